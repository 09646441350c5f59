package x11input

import (
	"strings"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
)

var namedKeysyms = map[string]string{
	"ESC":        "Escape",
	"ENTER":      "Return",
	"TAB":        "Tab",
	"SPACE":      "space",
	"BACKSPACE":  "BackSpace",
	"LEFTSHIFT":  "Shift_L",
	"RIGHTSHIFT": "Shift_R",
	"LEFTCTRL":   "Control_L",
	"RIGHTCTRL":  "Control_R",
	"LEFTALT":    "Alt_L",
	"RIGHTALT":   "Alt_R",
	"LEFTMETA":   "Super_L",
	"RIGHTMETA":  "Super_R",
	"CAPSLOCK":   "Caps_Lock",
	"NUMLOCK":    "Num_Lock",
	"SCROLLLOCK": "Scroll_Lock",
	"PAGEUP":     "Page_Up",
	"PAGEDOWN":   "Page_Down",
	"INSERT":     "Insert",
	"DELETE":     "Delete",
	"HOME":       "Home",
	"END":        "End",
	"UP":         "Up",
	"DOWN":       "Down",
	"LEFT":       "Left",
	"RIGHT":      "Right",
	"MENU":       "Menu",
	"COMPOSE":    "Menu",
	"PAUSE":      "Pause",
	"SYSRQ":      "Print",
	"MINUS":      "minus",
	"EQUAL":      "equal",
	"LEFTBRACE":  "bracketleft",
	"RIGHTBRACE": "bracketright",
	"SEMICOLON":  "semicolon",
	"APOSTROPHE": "apostrophe",
	"GRAVE":      "grave",
	"BACKSLASH":  "backslash",
	"COMMA":      "comma",
	"DOT":        "period",
	"SLASH":      "slash",

	"MUTE":           "XF86AudioMute",
	"VOLUMEUP":       "XF86AudioRaiseVolume",
	"VOLUMEDOWN":     "XF86AudioLowerVolume",
	"PLAYPAUSE":      "XF86AudioPlay",
	"PLAYCD":         "XF86AudioPlay",
	"PAUSECD":        "XF86AudioPause",
	"STOPCD":         "XF86AudioStop",
	"NEXTSONG":       "XF86AudioNext",
	"PREVIOUSSONG":   "XF86AudioPrev",
	"SCREENLOCK":     "XF86ScreenSaver",
	"SLEEP":          "XF86Sleep",
	"CALC":           "XF86Calculator",
	"WWW":            "XF86WWW",
	"MAIL":           "XF86Mail",
	"HOMEPAGE":       "XF86HomePage",
	"BRIGHTNESSUP":   "XF86MonBrightnessUp",
	"BRIGHTNESSDOWN": "XF86MonBrightnessDown",
}

var keypadKeysyms = map[string]string{
	"PLUS":     "KP_Add",
	"MINUS":    "KP_Subtract",
	"ASTERISK": "KP_Multiply",
	"SLASH":    "KP_Divide",
	"DOT":      "KP_Decimal",
	"ENTER":    "KP_Enter",
}

// keysymForCode returns the X keysym name for a Linux key code.
func keysymForCode(code uint16) (string, bool) {
	name := linuxinput.FormatCodeName(code)
	if !strings.HasPrefix(name, "KEY_") {
		return "", false
	}
	token := strings.TrimPrefix(name, "KEY_")

	if keysym, ok := namedKeysyms[token]; ok {
		return keysym, true
	}
	if len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z' {
		return strings.ToLower(token), true
	}
	if len(token) == 1 && token[0] >= '0' && token[0] <= '9' {
		return token, true
	}
	if strings.HasPrefix(token, "F") && isDigits(token[1:]) {
		return token, true
	}
	if suffix, ok := strings.CutPrefix(token, "KP"); ok {
		if keysym, ok := keypadKeysyms[suffix]; ok {
			return keysym, true
		}
		if len(suffix) == 1 && suffix[0] >= '0' && suffix[0] <= '9' {
			return "KP_" + suffix, true
		}
	}
	return "", false
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var shiftCode = mustCode("KEY_LEFTSHIFT")

func mustCode(name string) uint16 {
	code, err := linuxinput.ParseCode(name)
	if err != nil {
		panic(err)
	}
	return code
}
