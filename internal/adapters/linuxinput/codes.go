package linuxinput

import (
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

func ParseCode(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("key code is empty")
	}
	if code, ok := evdev.KEYFromString[raw]; ok {
		return uint16(code), nil
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown key %q: use names like KEY_F13/BTN_SIDE or a numeric code", value)
	}
	if parsed < 0 || parsed > 0xFFFF {
		return 0, fmt.Errorf("key code out of range: %d", parsed)
	}
	return uint16(parsed), nil
}

// preferredNames pins the name used for codes that carry kernel aliases.
var preferredNames = map[evdev.EvCode]string{
	evdev.KEY_MUTE:       "KEY_MUTE",
	evdev.KEY_SCREENLOCK: "KEY_SCREENLOCK",
	evdev.BTN_LEFT:       "BTN_LEFT",
}

func FormatCodeName(code uint16) string {
	if name, ok := preferredNames[evdev.EvCode(code)]; ok {
		return name
	}
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}

var chordAliases = map[string]string{
	"CTRL":      "KEY_LEFTCTRL",
	"CONTROL":   "KEY_LEFTCTRL",
	"SHIFT":     "KEY_LEFTSHIFT",
	"ALT":       "KEY_LEFTALT",
	"ALTGR":     "KEY_RIGHTALT",
	"META":      "KEY_LEFTMETA",
	"SUPER":     "KEY_LEFTMETA",
	"WIN":       "KEY_LEFTMETA",
	"ESCAPE":    "KEY_ESC",
	"RETURN":    "KEY_ENTER",
	"DEL":       "KEY_DELETE",
	"PGUP":      "KEY_PAGEUP",
	"PGDN":      "KEY_PAGEDOWN",
	"PRINT":     "KEY_SYSRQ",
	"PLAYPAUSE": "KEY_PLAYPAUSE",
}

// ParseChord turns "ctrl+shift+t" or "KEY_PLAYPAUSE" into key codes in press order.
func ParseChord(chord string) ([]uint16, error) {
	chord = strings.TrimSpace(chord)
	if chord == "" {
		return nil, fmt.Errorf("chord is empty")
	}

	parts := strings.Split(chord, "+")
	codes := make([]uint16, 0, len(parts))
	for _, part := range parts {
		code, err := parseChordToken(part)
		if err != nil {
			return nil, fmt.Errorf("chord %q: %w", chord, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func parseChordToken(token string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(token))
	if raw == "" {
		return 0, fmt.Errorf("empty key in chord")
	}
	if alias, ok := chordAliases[raw]; ok {
		raw = alias
	}
	if strings.HasPrefix(raw, "KEY_") || strings.HasPrefix(raw, "BTN_") {
		return ParseCode(raw)
	}
	if code, ok := evdev.KEYFromString["KEY_"+raw]; ok {
		return uint16(code), nil
	}
	return 0, fmt.Errorf("unknown key %q", token)
}

// TypedKey is one key press needed to type a character.
type TypedKey struct {
	Code  uint16
	Shift bool
}

const shiftedSymbols = `~!@#$%^&*()_+{}|:"<>?`
const plainSymbols = "`1234567890-=[]\\;',./"

var symbolKeys = map[rune]uint16{
	'`': uint16(evdev.KEY_GRAVE), '1': uint16(evdev.KEY_1), '2': uint16(evdev.KEY_2),
	'3': uint16(evdev.KEY_3), '4': uint16(evdev.KEY_4), '5': uint16(evdev.KEY_5),
	'6': uint16(evdev.KEY_6), '7': uint16(evdev.KEY_7), '8': uint16(evdev.KEY_8),
	'9': uint16(evdev.KEY_9), '0': uint16(evdev.KEY_0), '-': uint16(evdev.KEY_MINUS),
	'=': uint16(evdev.KEY_EQUAL), '[': uint16(evdev.KEY_LEFTBRACE), ']': uint16(evdev.KEY_RIGHTBRACE),
	'\\': uint16(evdev.KEY_BACKSLASH), ';': uint16(evdev.KEY_SEMICOLON), '\'': uint16(evdev.KEY_APOSTROPHE),
	',': uint16(evdev.KEY_COMMA), '.': uint16(evdev.KEY_DOT), '/': uint16(evdev.KEY_SLASH),
	' ': uint16(evdev.KEY_SPACE), '\n': uint16(evdev.KEY_ENTER), '\t': uint16(evdev.KEY_TAB),
}

// TextToKeys maps text onto a US layout. Characters outside it are reported as an error.
func TextToKeys(text string) ([]TypedKey, error) {
	keys := make([]TypedKey, 0, len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			code, err := ParseCode("KEY_" + strings.ToUpper(string(r)))
			if err != nil {
				return nil, err
			}
			keys = append(keys, TypedKey{Code: code})
		case r >= 'A' && r <= 'Z':
			code, err := ParseCode("KEY_" + string(r))
			if err != nil {
				return nil, err
			}
			keys = append(keys, TypedKey{Code: code, Shift: true})
		default:
			if code, ok := symbolKeys[r]; ok {
				keys = append(keys, TypedKey{Code: code})
				continue
			}
			if i := strings.IndexRune(shiftedSymbols, r); i >= 0 {
				base := rune(plainSymbols[i])
				keys = append(keys, TypedKey{Code: symbolKeys[base], Shift: true})
				continue
			}
			return nil, fmt.Errorf("cannot type %q", r)
		}
	}
	return keys, nil
}
