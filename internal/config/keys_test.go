package config

import (
	"testing"

	"github.com/jesseduffield/gocui"
)

func TestParseKey_SingleChar(t *testing.T) {
	tests := []struct {
		input    string
		wantRune rune
	}{
		{"q", 'q'},
		{"n", 'n'},
		{"?", '?'},
		{"/", '/'},
		{"é", 'é'},
	}

	for _, tt := range tests {
		key, err := ParseKey(tt.input)
		if err != nil {
			t.Errorf("ParseKey(%q) error = %v", tt.input, err)
			continue
		}
		if !key.IsRune() {
			t.Errorf("ParseKey(%q) expected rune, got special key", tt.input)
			continue
		}
		if key.Rune() != tt.wantRune {
			t.Errorf("ParseKey(%q) = %q, want %q", tt.input, key.Rune(), tt.wantRune)
		}
	}
}

func TestParseKey_UppercasePreserved(t *testing.T) {
	key, err := ParseKey("N")
	if err != nil {
		t.Fatalf("ParseKey(N) error = %v", err)
	}
	if key.Rune() != 'N' {
		t.Errorf("ParseKey(N) = %q, want 'N'", key.Rune())
	}
}

func TestParseKey_SpecialKeys(t *testing.T) {
	tests := []struct {
		input   string
		wantKey gocui.Key
	}{
		{"enter", gocui.KeyEnter},
		{"space", gocui.KeySpace},
		{"esc", gocui.KeyEsc},
		{"Escape", gocui.KeyEsc},
		{"tab", gocui.KeyTab},
		{"backspace", gocui.KeyBackspace2},
		{"up", gocui.KeyArrowUp},
		{"DOWN", gocui.KeyArrowDown},
		{"pagedown", gocui.KeyPgdn},
		{"f12", gocui.KeyF12},
	}

	for _, tt := range tests {
		key, err := ParseKey(tt.input)
		if err != nil {
			t.Errorf("ParseKey(%q) error = %v", tt.input, err)
			continue
		}
		if key.IsRune() {
			t.Errorf("ParseKey(%q) expected special key, got rune", tt.input)
			continue
		}
		if key.GocuiKey() != tt.wantKey {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.input, key.GocuiKey(), tt.wantKey)
		}
	}
}

func TestParseKey_CtrlCombinations(t *testing.T) {
	tests := []struct {
		input   string
		wantKey gocui.Key
	}{
		{"ctrl+a", gocui.KeyCtrlA},
		{"ctrl+g", gocui.KeyCtrlG},
		{"Ctrl+Q", gocui.KeyCtrlQ},
		{"ctrl+z", gocui.KeyCtrlZ},
	}

	for _, tt := range tests {
		key, err := ParseKey(tt.input)
		if err != nil {
			t.Errorf("ParseKey(%q) error = %v", tt.input, err)
			continue
		}
		if key.GocuiKey() != tt.wantKey {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.input, key.GocuiKey(), tt.wantKey)
		}
	}
}

func TestParseKey_Invalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"ctrl+",
		"ctrl+ab",
		"ctrl+1",
		"notakey",
	}

	for _, input := range tests {
		if _, err := ParseKey(input); err == nil {
			t.Errorf("ParseKey(%q) expected error, got nil", input)
		}
	}
}

func TestMustParseKey_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseKey(\"notakey\") should panic")
		}
	}()
	MustParseKey("notakey")
}

func TestKeyToString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{RuneKey('q'), "q"},
		{RuneKey('N'), "N"},
		{MustParseKey("ctrl+q"), "ctrl+q"},
		{MustParseKey("enter"), "enter"},
		{MustParseKey("up"), "up"},
	}

	for _, tt := range tests {
		if got := KeyToString(tt.key); got != tt.want {
			t.Errorf("KeyToString(%v) = %q, want %q", tt.key.Value, got, tt.want)
		}
	}
}

func TestKeyToStringAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"escape", "esc"},
		{"esc", "esc"},
		{"pageup", "pgup"},
		{"pagedown", "pgdn"},
	}

	// Map iteration order changes between runs; the name must not
	for i := 0; i < 50; i++ {
		for _, tt := range tests {
			if got := KeyToString(MustParseKey(tt.alias)); got != tt.want {
				t.Fatalf("KeyToString(%q) = %q, want %q", tt.alias, got, tt.want)
			}
		}
	}
}

func TestKeyComparable(t *testing.T) {
	if MustParseKey("esc") != MustParseKey("escape") {
		t.Error("esc and escape should parse to the same key")
	}
	if MustParseKey("n") == MustParseKey("N") {
		t.Error("n and N should differ")
	}
}
