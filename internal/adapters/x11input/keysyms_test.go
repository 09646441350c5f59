package x11input

import (
	"testing"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
)

func TestKeysymForCode(t *testing.T) {
	cases := map[string]string{
		"KEY_A":            "a",
		"KEY_7":            "7",
		"KEY_F13":          "F13",
		"KEY_ESC":          "Escape",
		"KEY_LEFTCTRL":     "Control_L",
		"KEY_KPENTER":      "KP_Enter",
		"KEY_KP4":          "KP_4",
		"KEY_PLAYPAUSE":    "XF86AudioPlay",
		"KEY_VOLUMEUP":     "XF86AudioRaiseVolume",
		"KEY_PREVIOUSSONG": "XF86AudioPrev",
	}
	for name, want := range cases {
		code, err := linuxinput.ParseCode(name)
		if err != nil {
			t.Fatalf("ParseCode(%s) error = %v", name, err)
		}
		got, ok := keysymForCode(code)
		if !ok || got != want {
			t.Fatalf("keysymForCode(%s) = %q, %v; want %q", name, got, ok, want)
		}
	}

	left, _ := linuxinput.ParseCode("BTN_LEFT")
	if _, ok := keysymForCode(left); ok {
		t.Fatalf("mouse buttons have no keysym")
	}
}
