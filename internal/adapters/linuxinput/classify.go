package linuxinput

import (
	evdev "github.com/holoplot/go-evdev"
)

type Kind string

const (
	KindKeyboard          Kind = "keyboard"
	KindMouse             Kind = "mouse"
	KindKeyboardEmulation Kind = "keyboard_emulation"
	KindGhost             Kind = "ghost"
	KindUnknown           Kind = "unknown"
)

type Role string

const (
	RoleNone    Role = ""
	RolePrimary Role = "primary"
	RoleMedia   Role = "media"
	RoleSystem  Role = "system"
	RoleGhost   Role = "ghost"
	RoleUnknown Role = "unknown"
)

// minPrimaryKeys is the smallest key count a usable keyboard can report.
const minPrimaryKeys = 5

type Features struct {
	Numpad      bool
	FunctionRow bool
	Arrows      bool
	MediaKeys   bool
	SystemKeys  bool
}

type MouseInfo struct {
	Buttons          int
	Named            []string
	Scroll           bool
	HorizontalScroll bool
	EmulatedKeys     bool
}

// Classification is derived from Capabilities on every scan and never mutated.
type Classification struct {
	Kind     Kind
	Role     Role
	Layout   Layout
	Features Features
	Mouse    MouseInfo
	KeyCount int
}

// IsKeyboard reports whether the device belongs in the keyboard result set.
func (c Classification) IsKeyboard() bool {
	if c.Role == RoleGhost || c.Role == RoleNone {
		return false
	}
	return c.Kind == KindKeyboard || c.Kind == KindKeyboardEmulation
}

func (c Classification) IsMouse() bool {
	return c.Kind == KindMouse || c.Kind == KindKeyboardEmulation
}

var namedMouseButtons = []struct {
	name string
	code evdev.EvCode
}{
	{"left", evdev.BTN_LEFT},
	{"right", evdev.BTN_RIGHT},
	{"middle", evdev.BTN_MIDDLE},
	{"side", evdev.BTN_SIDE},
	{"extra", evdev.BTN_EXTRA},
	{"forward", evdev.BTN_FORWARD},
	{"back", evdev.BTN_BACK},
	{"task", evdev.BTN_TASK},
}

func Classify(caps Capabilities) Classification {
	c := Classification{KeyCount: caps.KeyCount()}

	keyboardCandidate := caps.HasAnyKey(keyboardProbeKeys...)
	mouseCandidate := caps.HasAnyKey(evdev.BTN_LEFT, evdev.BTN_RIGHT) ||
		(caps.HasRel(evdev.REL_X) && caps.HasRel(evdev.REL_Y))
	hasAlpha := caps.HasAnyKey(alphaKeys...)

	switch {
	case mouseCandidate:
		c.Kind = KindMouse
		c.Mouse = classifyMouse(caps, hasAlpha)
		if hasAlpha {
			c.Kind = KindKeyboardEmulation
			c.Role = keyboardRole(caps, hasAlpha)
			c.Features = keyboardFeatures(caps)
		}
	case keyboardCandidate:
		c.Role = keyboardRole(caps, hasAlpha)
		c.Features = keyboardFeatures(caps)
		c.Kind = KindKeyboard
		if c.Role == RoleGhost {
			c.Kind = KindGhost
		}
	default:
		c.Kind = KindUnknown
		return c
	}

	if c.Role == RolePrimary {
		c.Layout = detectLayout(caps)
	}
	return c
}

func keyboardRole(caps Capabilities, hasAlpha bool) Role {
	switch {
	case hasAlpha && caps.KeyCount() >= minPrimaryKeys:
		return RolePrimary
	case caps.HasAnyKey(mediaKeys...):
		return RoleMedia
	case caps.HasAnyKey(systemKeys...):
		return RoleSystem
	case caps.KeyCount() < minPrimaryKeys:
		return RoleGhost
	default:
		return RoleUnknown
	}
}

func keyboardFeatures(caps Capabilities) Features {
	return Features{
		Numpad:      caps.HasAllKeys(numpadKeys...),
		FunctionRow: caps.HasAllKeys(functionRowKeys...),
		Arrows:      caps.HasAllKeys(arrowKeys...),
		MediaKeys:   caps.HasAnyKey(mediaKeys...),
		SystemKeys:  caps.HasAnyKey(systemKeys...),
	}
}

func classifyMouse(caps Capabilities, hasAlpha bool) MouseInfo {
	info := MouseInfo{
		Scroll:           caps.HasRel(evdev.REL_WHEEL),
		HorizontalScroll: caps.HasRel(evdev.REL_HWHEEL),
		EmulatedKeys:     hasAlpha,
	}
	for _, button := range namedMouseButtons {
		if caps.HasKey(button.code) {
			info.Named = append(info.Named, button.name)
		}
	}
	for _, code := range caps.Keys() {
		if codeIsMouseButton(uint16(code)) {
			info.Buttons++
		}
	}
	return info
}

func codeIsMouseButton(code uint16) bool {
	c := evdev.EvCode(code)
	return c >= evdev.BTN_MOUSE && c <= evdev.BTN_TASK
}
