package config

import (
	"fmt"
	"strings"

	"github.com/jesseduffield/gocui"
)

// Key represents a parsed key binding. Key is comparable and can be used as a
// map key.
type Key struct {
	Value any // rune for single chars, gocui.Key for special keys
	Mod   gocui.Modifier
}

// ParseKey parses a key string into a gocui-compatible key value.
// Supported formats:
//   - Single character: "q", "n", "?", "/"
//   - Special keys: "enter", "space", "esc", "tab", "backspace"
//   - Arrow keys: "up", "down", "left", "right"
//   - Ctrl combinations: "ctrl+c", "ctrl+q"
//   - Uppercase for shift: "N" (shift+n)
//
// Named keys are case insensitive; single characters keep their case.
func ParseKey(s string) (Key, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Key{}, fmt.Errorf("empty key string")
	}
	lower := strings.ToLower(trimmed)

	if char, found := strings.CutPrefix(lower, "ctrl+"); found {
		if len(char) == 1 {
			if ctrlKey, ok := ctrlKeyMap[char]; ok {
				return Key{Value: ctrlKey, Mod: gocui.ModNone}, nil
			}
		}
		return Key{}, fmt.Errorf("invalid ctrl combination: %s", s)
	}

	if key, ok := specialKeyMap[lower]; ok {
		return Key{Value: key, Mod: gocui.ModNone}, nil
	}

	if r := []rune(trimmed); len(r) == 1 {
		return Key{Value: r[0], Mod: gocui.ModNone}, nil
	}

	return Key{}, fmt.Errorf("unknown key: %s", s)
}

// MustParseKey is ParseKey for keys known to be valid.
func MustParseKey(s string) Key {
	key, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return key
}

// RuneKey returns the key for a printable character.
func RuneKey(r rune) Key {
	return Key{Value: r, Mod: gocui.ModNone}
}

// IsRune returns true if the key is a rune (single character).
func (k Key) IsRune() bool {
	_, ok := k.Value.(rune)
	return ok
}

// Rune returns the key as a rune, or 0 if not a rune.
func (k Key) Rune() rune {
	if r, ok := k.Value.(rune); ok {
		return r
	}
	return 0
}

// GocuiKey returns the key as a gocui.Key, or 0 if not a special key.
func (k Key) GocuiKey() gocui.Key {
	if key, ok := k.Value.(gocui.Key); ok {
		return key
	}
	return 0
}

// String returns the key's config spelling.
func (k Key) String() string {
	return KeyToString(k)
}

// specialKeyMap maps string names to gocui special keys.
var specialKeyMap = map[string]gocui.Key{
	"enter":     gocui.KeyEnter,
	"space":     gocui.KeySpace,
	"esc":       gocui.KeyEsc,
	"escape":    gocui.KeyEsc,
	"tab":       gocui.KeyTab,
	"backspace": gocui.KeyBackspace2,
	"delete":    gocui.KeyDelete,
	"insert":    gocui.KeyInsert,
	"home":      gocui.KeyHome,
	"end":       gocui.KeyEnd,
	"pgup":      gocui.KeyPgup,
	"pageup":    gocui.KeyPgup,
	"pgdn":      gocui.KeyPgdn,
	"pagedown":  gocui.KeyPgdn,
	"up":        gocui.KeyArrowUp,
	"down":      gocui.KeyArrowDown,
	"left":      gocui.KeyArrowLeft,
	"right":     gocui.KeyArrowRight,
	"f1":        gocui.KeyF1,
	"f2":        gocui.KeyF2,
	"f3":        gocui.KeyF3,
	"f4":        gocui.KeyF4,
	"f5":        gocui.KeyF5,
	"f6":        gocui.KeyF6,
	"f7":        gocui.KeyF7,
	"f8":        gocui.KeyF8,
	"f9":        gocui.KeyF9,
	"f10":       gocui.KeyF10,
	"f11":       gocui.KeyF11,
	"f12":       gocui.KeyF12,
}

// ctrlKeyMap maps single characters to their ctrl+key equivalents.
var ctrlKeyMap = map[string]gocui.Key{
	"a": gocui.KeyCtrlA,
	"b": gocui.KeyCtrlB,
	"c": gocui.KeyCtrlC,
	"d": gocui.KeyCtrlD,
	"e": gocui.KeyCtrlE,
	"f": gocui.KeyCtrlF,
	"g": gocui.KeyCtrlG,
	"h": gocui.KeyCtrlH,
	"i": gocui.KeyCtrlI,
	"j": gocui.KeyCtrlJ,
	"k": gocui.KeyCtrlK,
	"l": gocui.KeyCtrlL,
	"m": gocui.KeyCtrlM,
	"n": gocui.KeyCtrlN,
	"o": gocui.KeyCtrlO,
	"p": gocui.KeyCtrlP,
	"q": gocui.KeyCtrlQ,
	"r": gocui.KeyCtrlR,
	"s": gocui.KeyCtrlS,
	"t": gocui.KeyCtrlT,
	"u": gocui.KeyCtrlU,
	"v": gocui.KeyCtrlV,
	"w": gocui.KeyCtrlW,
	"x": gocui.KeyCtrlX,
	"y": gocui.KeyCtrlY,
	"z": gocui.KeyCtrlZ,
}

// keyNames maps each gocui key to one canonical name. Among aliases the
// shortest name wins, so "escape" prints as "esc".
var keyNames = func() map[gocui.Key]string {
	names := make(map[gocui.Key]string, len(specialKeyMap)+len(ctrlKeyMap))
	for name, key := range specialKeyMap {
		if cur, ok := names[key]; ok && (len(cur) < len(name) || len(cur) == len(name) && cur < name) {
			continue
		}
		names[key] = name
	}
	for char, key := range ctrlKeyMap {
		if _, ok := names[key]; !ok {
			names[key] = "ctrl+" + char
		}
	}
	return names
}()

// KeyToString converts a Key back to its string representation.
func KeyToString(k Key) string {
	if k.IsRune() {
		return string(k.Rune())
	}
	return keyNames[k.GocuiKey()]
}
