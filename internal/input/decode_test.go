package input

import (
	"testing"

	"github.com/tlinford/zellij/internal/config"
)

func TestDecode_Named(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"\r", "enter"},
		{"\t", "tab"},
		{" ", "space"},
		{"\x7f", "backspace"},
		{"\x1b", "esc"},
		{"\x01", "ctrl+a"},
		{"\x11", "ctrl+q"},
		{"\x1b[A", "up"},
		{"\x1b[B", "down"},
		{"\x1b[C", "right"},
		{"\x1b[D", "left"},
		{"\x1bOA", "up"},
		{"\x1b[H", "home"},
		{"\x1b[F", "end"},
		{"\x1b[1~", "home"},
		{"\x1b[2~", "insert"},
		{"\x1b[3~", "delete"},
		{"\x1b[5~", "pgup"},
		{"\x1b[6~", "pgdn"},
		{"\x1bOP", "f1"},
		{"\x1bOS", "f4"},
		{"\x1b[15~", "f5"},
		{"\x1b[24~", "f12"},
	}

	for _, tt := range tests {
		keys := Decode([]byte(tt.raw))
		if len(keys) != 1 {
			t.Errorf("Decode(%q) = %d keys, want 1", tt.raw, len(keys))
			continue
		}
		if want := config.MustParseKey(tt.want); keys[0].Key != want {
			t.Errorf("Decode(%q) = %v, want %s", tt.raw, keys[0].Value, tt.want)
		}
		if string(keys[0].Raw) != tt.raw {
			t.Errorf("Decode(%q).Raw = %q", tt.raw, keys[0].Raw)
		}
	}
}

func TestDecode_Runes(t *testing.T) {
	keys := Decode([]byte("aZ日?"))
	want := []rune{'a', 'Z', '日', '?'}
	if len(keys) != len(want) {
		t.Fatalf("Decode = %d keys, want %d", len(keys), len(want))
	}
	for i, r := range want {
		if keys[i].Rune() != r {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i].Rune(), r)
		}
	}
	if string(keys[2].Raw) != "日" {
		t.Errorf("keys[2].Raw = %q, want the full UTF-8 encoding", keys[2].Raw)
	}
}

func TestDecode_Sequence(t *testing.T) {
	keys := Decode([]byte("a\x1b[Ab\x1b\x1b"))
	want := []string{"a", "up", "b", "esc", "esc"}
	if len(keys) != len(want) {
		t.Fatalf("Decode = %d keys, want %d", len(keys), len(want))
	}
	for i, name := range want {
		if keys[i].Key != config.MustParseKey(name) {
			t.Errorf("keys[%d] = %v, want %s", i, keys[i].Value, name)
		}
	}
}

func TestDecode_Unknown(t *testing.T) {
	tests := []string{
		"\x1bx",      // alt+x
		"\x1b[1;5A",  // ctrl+up
		"\x1b[99~",   // unknown tilde key
		"\x1b[",      // truncated
		"\xff",       // invalid UTF-8
		"\x1c",       // ctrl+backslash
	}

	for _, raw := range tests {
		keys := Decode([]byte(raw))
		if len(keys) != 1 {
			t.Errorf("Decode(%q) = %d keys, want 1", raw, len(keys))
			continue
		}
		if keys[0].Known() {
			t.Errorf("Decode(%q) = %v, want unknown", raw, keys[0].Value)
		}
		if string(keys[0].Raw) != raw {
			t.Errorf("Decode(%q).Raw = %q", raw, keys[0].Raw)
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	if keys := Decode(nil); len(keys) != 0 {
		t.Errorf("Decode(nil) = %d keys, want 0", len(keys))
	}
}
