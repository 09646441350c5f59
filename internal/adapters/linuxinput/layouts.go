package linuxinput

import (
	evdev "github.com/holoplot/go-evdev"
)

type Layout string

const (
	LayoutFullSize  Layout = "full_size"
	LayoutTKL       Layout = "tkl"
	Layout75        Layout = "75_percent"
	Layout65        Layout = "65_percent"
	Layout60        Layout = "60_percent"
	Layout40        Layout = "40_percent"
	LayoutGamingPad Layout = "gaming_pad"
	LayoutCustom    Layout = "custom"
)

// layoutTier describes one size class. A device matches when it has at least MinKeys key
// codes, every Required code and none of the Forbidden ones.
type layoutTier struct {
	Layout    Layout
	MinKeys   int
	Required  []evdev.EvCode
	Forbidden []evdev.EvCode
}

var (
	alphaKeys = []evdev.EvCode{
		evdev.KEY_A, evdev.KEY_B, evdev.KEY_C, evdev.KEY_D, evdev.KEY_E, evdev.KEY_F, evdev.KEY_G,
		evdev.KEY_H, evdev.KEY_I, evdev.KEY_J, evdev.KEY_K, evdev.KEY_L, evdev.KEY_M, evdev.KEY_N,
		evdev.KEY_O, evdev.KEY_P, evdev.KEY_Q, evdev.KEY_R, evdev.KEY_S, evdev.KEY_T, evdev.KEY_U,
		evdev.KEY_V, evdev.KEY_W, evdev.KEY_X, evdev.KEY_Y, evdev.KEY_Z,
	}
	functionRowKeys = []evdev.EvCode{
		evdev.KEY_F1, evdev.KEY_F2, evdev.KEY_F3, evdev.KEY_F4, evdev.KEY_F5, evdev.KEY_F6,
		evdev.KEY_F7, evdev.KEY_F8, evdev.KEY_F9, evdev.KEY_F10, evdev.KEY_F11, evdev.KEY_F12,
	}
	arrowKeys      = []evdev.EvCode{evdev.KEY_UP, evdev.KEY_DOWN, evdev.KEY_LEFT, evdev.KEY_RIGHT}
	navClusterKeys = []evdev.EvCode{
		evdev.KEY_INSERT, evdev.KEY_HOME, evdev.KEY_PAGEUP,
		evdev.KEY_DELETE, evdev.KEY_END, evdev.KEY_PAGEDOWN,
	}
	numpadKeys = []evdev.EvCode{
		evdev.KEY_KP0, evdev.KEY_KP1, evdev.KEY_KP2, evdev.KEY_KP3, evdev.KEY_KP4,
		evdev.KEY_KP5, evdev.KEY_KP6, evdev.KEY_KP7, evdev.KEY_KP8, evdev.KEY_KP9,
	}
	numberRowKeys = []evdev.EvCode{
		evdev.KEY_1, evdev.KEY_2, evdev.KEY_3, evdev.KEY_4, evdev.KEY_5,
		evdev.KEY_6, evdev.KEY_7, evdev.KEY_8, evdev.KEY_9, evdev.KEY_0,
	}
	mediaKeys = []evdev.EvCode{
		evdev.KEY_PLAYPAUSE, evdev.KEY_PLAYCD, evdev.KEY_PAUSECD, evdev.KEY_STOPCD,
		evdev.KEY_NEXTSONG, evdev.KEY_PREVIOUSSONG,
		evdev.KEY_VOLUMEUP, evdev.KEY_VOLUMEDOWN, evdev.KEY_MUTE,
	}
	systemKeys = []evdev.EvCode{evdev.KEY_POWER, evdev.KEY_SLEEP, evdev.KEY_WAKEUP, evdev.KEY_SUSPEND}

	keyboardProbeKeys = []evdev.EvCode{
		evdev.KEY_A, evdev.KEY_B, evdev.KEY_C, evdev.KEY_SPACE, evdev.KEY_ENTER, evdev.KEY_ESC,
		evdev.KEY_PLAYPAUSE, evdev.KEY_VOLUMEUP, evdev.KEY_MUTE, evdev.KEY_POWER, evdev.KEY_SLEEP,
	}
)

func concatCodes(groups ...[]evdev.EvCode) []evdev.EvCode {
	var out []evdev.EvCode
	for _, group := range groups {
		out = append(out, group...)
	}
	return out
}

// layoutTiers is checked in order; the first match wins.
var layoutTiers = []layoutTier{
	{
		Layout:   LayoutFullSize,
		MinKeys:  100,
		Required: concatCodes(functionRowKeys, arrowKeys, navClusterKeys, numpadKeys, []evdev.EvCode{evdev.KEY_NUMLOCK, evdev.KEY_KPENTER}),
	},
	{
		Layout:    LayoutTKL,
		MinKeys:   84,
		Required:  concatCodes(functionRowKeys, arrowKeys, navClusterKeys),
		Forbidden: []evdev.EvCode{evdev.KEY_KPENTER},
	},
	{
		Layout:    Layout75,
		MinKeys:   80,
		Required:  concatCodes(functionRowKeys, arrowKeys, []evdev.EvCode{evdev.KEY_DELETE}),
		Forbidden: []evdev.EvCode{evdev.KEY_KPENTER},
	},
	{
		Layout:    Layout65,
		MinKeys:   66,
		Required:  concatCodes(arrowKeys, numberRowKeys),
		Forbidden: []evdev.EvCode{evdev.KEY_F1, evdev.KEY_KPENTER},
	},
	{
		Layout:    Layout60,
		MinKeys:   60,
		Required:  concatCodes(numberRowKeys, []evdev.EvCode{evdev.KEY_ENTER, evdev.KEY_SPACE, evdev.KEY_LEFTSHIFT, evdev.KEY_ESC}),
		Forbidden: []evdev.EvCode{evdev.KEY_UP, evdev.KEY_F1, evdev.KEY_KPENTER},
	},
	{
		Layout:    Layout40,
		MinKeys:   40,
		Required:  []evdev.EvCode{evdev.KEY_A, evdev.KEY_Z, evdev.KEY_SPACE, evdev.KEY_ENTER},
		Forbidden: []evdev.EvCode{evdev.KEY_1, evdev.KEY_UP, evdev.KEY_F1},
	},
	{
		Layout:    LayoutGamingPad,
		MinKeys:   10,
		Required:  []evdev.EvCode{evdev.KEY_W, evdev.KEY_A, evdev.KEY_S, evdev.KEY_D},
		Forbidden: []evdev.EvCode{evdev.KEY_P, evdev.KEY_L, evdev.KEY_M},
	},
}

func (t layoutTier) matches(caps Capabilities) bool {
	if caps.KeyCount() < t.MinKeys {
		return false
	}
	if !caps.HasAllKeys(t.Required...) {
		return false
	}
	return !caps.HasAnyKey(t.Forbidden...)
}

func detectLayout(caps Capabilities) Layout {
	for _, tier := range layoutTiers {
		if tier.matches(caps) {
			return tier.Layout
		}
	}
	return LayoutCustom
}

// LayoutTierMatches reports whether caps satisfies the named tier's thresholds.
func LayoutTierMatches(layout Layout, caps Capabilities) bool {
	for _, tier := range layoutTiers {
		if tier.Layout == layout {
			return tier.matches(caps)
		}
	}
	return false
}
