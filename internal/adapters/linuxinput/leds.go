package linuxinput

import (
	"fmt"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// LEDState is the lock-indicator state of one keyboard.
type LEDState struct {
	NumLock    bool
	CapsLock   bool
	ScrollLock bool
}

func (s LEDState) String() string {
	on := make([]string, 0, 3)
	if s.NumLock {
		on = append(on, "num")
	}
	if s.CapsLock {
		on = append(on, "caps")
	}
	if s.ScrollLock {
		on = append(on, "scroll")
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

func readLEDs(dev Device) (LEDState, error) {
	state, err := dev.State(evdev.EV_LED)
	if err != nil {
		return LEDState{}, fmt.Errorf("read led state: %w", err)
	}
	return LEDState{
		NumLock:    state[evdev.LED_NUML],
		CapsLock:   state[evdev.LED_CAPSL],
		ScrollLock: state[evdev.LED_SCROLLL],
	}, nil
}

func writeLEDs(dev Device, state LEDState) error {
	events := []evdev.InputEvent{
		{Type: evdev.EV_LED, Code: evdev.LED_NUML, Value: boolValue(state.NumLock)},
		{Type: evdev.EV_LED, Code: evdev.LED_CAPSL, Value: boolValue(state.CapsLock)},
		{Type: evdev.EV_LED, Code: evdev.LED_SCROLLL, Value: boolValue(state.ScrollLock)},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	}
	for i := range events {
		if err := dev.WriteOne(&events[i]); err != nil {
			return fmt.Errorf("write led state: %w", err)
		}
	}
	return nil
}

func boolValue(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
