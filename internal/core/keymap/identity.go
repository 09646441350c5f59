package keymap

import (
	"fmt"
	"strings"
)

// Modifiers is a set of held modifier classes. Left and right variants collapse into one class.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModCtrl, "CTRL"},
	{ModShift, "SHIFT"},
	{ModAlt, "ALT"},
	{ModMeta, "META"},
}

var modifierAliases = map[string]Modifiers{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"SHIFT":   ModShift,
	"ALT":     ModAlt,
	"META":    ModMeta,
	"SUPER":   ModMeta,
	"WIN":     ModMeta,
}

var modifierKeys = map[string]Modifiers{
	"KEY_LEFTCTRL":   ModCtrl,
	"KEY_RIGHTCTRL":  ModCtrl,
	"KEY_LEFTSHIFT":  ModShift,
	"KEY_RIGHTSHIFT": ModShift,
	"KEY_LEFTALT":    ModAlt,
	"KEY_RIGHTALT":   ModAlt,
	"KEY_LEFTMETA":   ModMeta,
	"KEY_RIGHTMETA":  ModMeta,
}

// ModifierForKey reports which modifier class a key name belongs to, if any.
func ModifierForKey(name string) (Modifiers, bool) {
	mod, ok := modifierKeys[strings.ToUpper(name)]
	return mod, ok
}

// ParseModifier resolves a modifier token such as "ctrl" or "super".
func ParseModifier(token string) (Modifiers, error) {
	mod, ok := modifierAliases[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("unknown modifier %q", token)
	}
	return mod, nil
}

func (m Modifiers) String() string {
	parts := make([]string, 0, len(modifierNames))
	for _, entry := range modifierNames {
		if m&entry.mod != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "+")
}

// Identity renders the canonical key identity: held modifiers in CTRL, SHIFT, ALT, META
// order followed by the key name.
func Identity(mods Modifiers, key string) string {
	key = strings.ToUpper(key)
	if mods == 0 {
		return key
	}
	return mods.String() + "+" + key
}

// ParseIdentity normalizes a profile key such as "shift+ctrl+KEY_C", merging any extra
// modifiers listed on the mapping entry. A bare key name such as "a" means KEY_A.
func ParseIdentity(raw string, extra []string) (string, error) {
	tokens := strings.Split(strings.TrimSpace(raw), "+")
	key := strings.ToUpper(strings.TrimSpace(tokens[len(tokens)-1]))
	if key == "" {
		return "", fmt.Errorf("key %q has no key name", raw)
	}
	if !strings.HasPrefix(key, "KEY_") && !strings.HasPrefix(key, "BTN_") {
		key = "KEY_" + key
	}

	var mods Modifiers
	for _, token := range tokens[:len(tokens)-1] {
		mod, err := ParseModifier(token)
		if err != nil {
			return "", fmt.Errorf("key %q: %w", raw, err)
		}
		mods |= mod
	}
	for _, token := range extra {
		mod, err := ParseModifier(token)
		if err != nil {
			return "", fmt.Errorf("key %q: %w", raw, err)
		}
		mods |= mod
	}
	return Identity(mods, key), nil
}
