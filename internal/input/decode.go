package input

import (
	"unicode/utf8"

	"github.com/tlinford/zellij/internal/config"
)

// Key is one decoded keystroke. Key.Value is nil for input that has no name
// in the key vocabulary, such as alt combinations or unknown escape
// sequences; Raw always holds the bytes as read.
type Key struct {
	config.Key
	Raw []byte
}

// Known reports whether the key has a name.
func (k Key) Known() bool {
	return k.Value != nil
}

const esc = 0x1b

// csiFinal maps the final byte of a parameterless CSI or SS3 sequence.
var csiFinal = map[byte]string{
	'A': "up",
	'B': "down",
	'C': "right",
	'D': "left",
	'H': "home",
	'F': "end",
}

var ss3Final = map[byte]string{
	'P': "f1",
	'Q': "f2",
	'R': "f3",
	'S': "f4",
}

// csiTilde maps the numeric parameter of CSI n ~ sequences.
var csiTilde = map[string]string{
	"1":  "home",
	"2":  "insert",
	"3":  "delete",
	"4":  "end",
	"5":  "pgup",
	"6":  "pgdn",
	"7":  "home",
	"8":  "end",
	"15": "f5",
	"17": "f6",
	"18": "f7",
	"19": "f8",
	"20": "f9",
	"21": "f10",
	"23": "f11",
	"24": "f12",
}

// Decode splits raw terminal input into keys.
func Decode(data []byte) []Key {
	var keys []Key
	for len(data) > 0 {
		n, name := decodeOne(data)
		key := Key{Raw: append([]byte(nil), data[:n]...)}
		switch {
		case name != "":
			key.Key = config.MustParseKey(name)
		case n == 1 && data[0] >= 0x21 && data[0] < 0x7f:
			key.Key = config.RuneKey(rune(data[0]))
		case n > 1 && data[0] != esc:
			if r, _ := utf8.DecodeRune(data[:n]); r != utf8.RuneError {
				key.Key = config.RuneKey(r)
			}
		}
		keys = append(keys, key)
		data = data[n:]
	}
	return keys
}

// decodeOne returns the length of the first key in data and its config name
// when it has one.
func decodeOne(data []byte) (int, string) {
	b := data[0]
	switch {
	case b == esc:
		return decodeEscape(data)
	case b == '\r':
		return 1, "enter"
	case b == '\t':
		return 1, "tab"
	case b == 0x7f:
		return 1, "backspace"
	case b == ' ':
		return 1, "space"
	case b >= 0x01 && b <= 0x1a:
		return 1, "ctrl+" + string(rune('a'+b-1))
	case b < utf8.RuneSelf:
		return 1, ""
	}

	_, size := utf8.DecodeRune(data)
	return size, ""
}

func decodeEscape(data []byte) (int, string) {
	if len(data) == 1 {
		return 1, "esc"
	}

	switch data[1] {
	case '[':
		return decodeCSI(data)
	case 'O':
		if len(data) < 3 {
			return 2, ""
		}
		if name, ok := ss3Final[data[2]]; ok {
			return 3, name
		}
		if name, ok := csiFinal[data[2]]; ok {
			return 3, name
		}
		return 3, ""
	case esc:
		// A second escape starts a new key
		return 1, "esc"
	}

	// Alt combinations have no name
	_, size := utf8.DecodeRune(data[1:])
	return 1 + size, ""
}

// decodeCSI consumes ESC [ params final.
func decodeCSI(data []byte) (int, string) {
	i := 2
	for i < len(data) && data[i] >= 0x30 && data[i] <= 0x3f {
		i++
	}
	for i < len(data) && data[i] >= 0x20 && data[i] <= 0x2f {
		i++
	}
	if i >= len(data) {
		// Truncated sequence
		return len(data), ""
	}

	final := data[i]
	params := string(data[2:i])
	n := i + 1

	if final == '~' {
		return n, csiTilde[params]
	}
	if params == "" || params == "1" {
		return n, csiFinal[final]
	}
	return n, ""
}
