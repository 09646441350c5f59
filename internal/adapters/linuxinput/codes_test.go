package linuxinput

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func TestParseCode(t *testing.T) {
	code, err := ParseCode(" key_f13 ")
	if err != nil {
		t.Fatalf("ParseCode() error = %v", err)
	}
	if code != uint16(evdev.KEY_F13) {
		t.Fatalf("ParseCode() = %d, want KEY_F13", code)
	}
	if code, err := ParseCode("0x110"); err != nil || code != uint16(evdev.BTN_LEFT) {
		t.Fatalf("ParseCode(0x110) = %d, %v", code, err)
	}
	for _, bad := range []string{"", "KEY_NOPE", "-1", "70000"} {
		if _, err := ParseCode(bad); err == nil {
			t.Fatalf("ParseCode(%q) expected error", bad)
		}
	}
	if name := FormatCodeName(uint16(evdev.BTN_LEFT)); name != "BTN_LEFT" {
		t.Fatalf("FormatCodeName(BTN_LEFT) = %q", name)
	}
}

func TestParseChord(t *testing.T) {
	cases := []struct {
		chord string
		want  []evdev.EvCode
	}{
		{"ctrl+shift+t", []evdev.EvCode{evdev.KEY_LEFTCTRL, evdev.KEY_LEFTSHIFT, evdev.KEY_T}},
		{"Super+Return", []evdev.EvCode{evdev.KEY_LEFTMETA, evdev.KEY_ENTER}},
		{"KEY_PLAYPAUSE", []evdev.EvCode{evdev.KEY_PLAYPAUSE}},
		{"alt+f4", []evdev.EvCode{evdev.KEY_LEFTALT, evdev.KEY_F4}},
	}
	for _, tc := range cases {
		got, err := ParseChord(tc.chord)
		if err != nil {
			t.Fatalf("ParseChord(%q) error = %v", tc.chord, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("ParseChord(%q) = %v, want %v", tc.chord, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != uint16(tc.want[i]) {
				t.Fatalf("ParseChord(%q) = %v, want %v", tc.chord, got, tc.want)
			}
		}
	}

	for _, bad := range []string{"", "ctrl+", "ctrl+bogus"} {
		if _, err := ParseChord(bad); err == nil {
			t.Fatalf("ParseChord(%q) expected error", bad)
		}
	}
}

func TestTextToKeys(t *testing.T) {
	keys, err := TextToKeys("Hi!")
	if err != nil {
		t.Fatalf("TextToKeys() error = %v", err)
	}
	want := []TypedKey{
		{Code: uint16(evdev.KEY_H), Shift: true},
		{Code: uint16(evdev.KEY_I)},
		{Code: uint16(evdev.KEY_1), Shift: true},
	}
	if len(keys) != len(want) {
		t.Fatalf("TextToKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("TextToKeys() = %v, want %v", keys, want)
		}
	}

	if _, err := TextToKeys("naïve"); err == nil {
		t.Fatalf("expected error for characters outside the layout")
	}
}
