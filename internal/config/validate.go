package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValidateKeys checks for duplicate keybindings and invalid key strings.
// A binding left empty is disabled and skipped.
func ValidateKeys(keys *KeyBindings) error {
	// Build a map of parsed key -> action names for duplicate detection.
	// Comparing parsed keys catches "esc" vs "escape".
	keyMap := make(map[Key][]string)

	v := reflect.ValueOf(keys).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Name

		if field.Kind() != reflect.String {
			continue
		}

		keyStr := field.String()
		if keyStr == "" {
			continue
		}

		key, err := ParseKey(keyStr)
		if err != nil {
			return fmt.Errorf("invalid key for %s: %w", fieldName, err)
		}
		keyMap[key] = append(keyMap[key], fieldName)
	}

	var duplicates []string
	for key, actions := range keyMap {
		if len(actions) > 1 {
			duplicates = append(duplicates, fmt.Sprintf("key %q is used by: %s", KeyToString(key), strings.Join(actions, ", ")))
		}
	}

	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return fmt.Errorf("duplicate keybindings found:\n  %s", strings.Join(duplicates, "\n  "))
	}

	return nil
}

// ValidateEnv checks the environment overrides.
func ValidateEnv(env *Env) error {
	if env.Socket == "" {
		return fmt.Errorf("ZELLIJ_SOCKET must not be empty")
	}
	if env.ConnectTimeout <= 0 {
		return fmt.Errorf("ZELLIJ_CONNECT_TIMEOUT must be positive, got %s", env.ConnectTimeout)
	}
	return nil
}
