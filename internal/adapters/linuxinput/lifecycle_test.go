package linuxinput

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func newTestManager(devices ...*fakeDevice) (*Manager, *fakeOpener) {
	opener := &fakeOpener{devices: make(map[string]*fakeDevice)}
	for _, dev := range devices {
		opener.devices[dev.path] = dev
	}
	return newManager(opener.open, opener.open, noopLogger{}), opener
}

func ledState(dev *fakeDevice) LEDState {
	return LEDState{
		NumLock:    dev.leds[evdev.LED_NUML],
		CapsLock:   dev.leds[evdev.LED_CAPSL],
		ScrollLock: dev.leds[evdev.LED_SCROLLL],
	}
}

func TestReleaseRestoresLEDStateForAllPermutations(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		want := LEDState{NumLock: mask&1 != 0, CapsLock: mask&2 != 0, ScrollLock: mask&4 != 0}
		t.Run(want.String(), func(t *testing.T) {
			dev := newFakeDevice("/dev/input/event3", alphaKeys...)
			dev.leds = evdev.StateMap{
				evdev.LED_NUML:    want.NumLock,
				evdev.LED_CAPSL:   want.CapsLock,
				evdev.LED_SCROLLL: want.ScrollLock,
			}
			m, _ := newTestManager(dev)

			if _, err := m.Grab(dev.path); err != nil {
				t.Fatalf("Grab() error = %v", err)
			}
			if !dev.isGrabbed() {
				t.Fatalf("device not grabbed")
			}

			// Something flips every LED while the device is held.
			dev.leds = evdev.StateMap{
				evdev.LED_NUML:    !want.NumLock,
				evdev.LED_CAPSL:   !want.CapsLock,
				evdev.LED_SCROLLL: !want.ScrollLock,
			}

			m.Release(dev.path)
			if got := ledState(dev); got != want {
				t.Fatalf("LED state after release = %s, want %s", got, want)
			}
			if dev.isGrabbed() || dev.closes() != 1 {
				t.Fatalf("grabbed=%v closes=%d after release", dev.isGrabbed(), dev.closes())
			}
		})
	}
}

func TestReleaseFallsBackToLastKnownLEDState(t *testing.T) {
	first := newFakeDevice("/dev/input/event3", alphaKeys...)
	first.leds = evdev.StateMap{evdev.LED_NUML: true}
	second := newFakeDevice("/dev/input/event4", alphaKeys...)
	second.ledErr = syscall.EIO
	m, _ := newTestManager(first, second)

	for _, path := range []string{first.path, second.path} {
		if _, err := m.Grab(path); err != nil {
			t.Fatalf("Grab(%s) error = %v", path, err)
		}
	}
	m.Release(second.path)

	if got := ledState(second); got != (LEDState{NumLock: true}) {
		t.Fatalf("fallback LED state = %s, want num", got)
	}
}

func TestFailedGrabKeepsFallbackLEDState(t *testing.T) {
	first := newFakeDevice("/dev/input/event3", alphaKeys...)
	first.leds = evdev.StateMap{evdev.LED_CAPSL: true}
	busy := newFakeDevice("/dev/input/event4", alphaKeys...)
	busy.leds = evdev.StateMap{evdev.LED_SCROLLL: true}
	busy.grabErr = syscall.EBUSY
	last := newFakeDevice("/dev/input/event5", alphaKeys...)
	last.ledErr = syscall.EIO
	m, _ := newTestManager(first, busy, last)

	if _, err := m.Grab(first.path); err != nil {
		t.Fatalf("Grab(%s) error = %v", first.path, err)
	}
	if _, err := m.Grab(busy.path); err == nil {
		t.Fatalf("Grab(%s) expected error", busy.path)
	}
	if _, err := m.Grab(last.path); err != nil {
		t.Fatalf("Grab(%s) error = %v", last.path, err)
	}
	m.Release(last.path)

	if got := ledState(last); got != (LEDState{CapsLock: true}) {
		t.Fatalf("fallback LED state = %s, want caps", got)
	}
}

func TestReadOnlyGrabSkipsLEDRestore(t *testing.T) {
	dev := newFakeDevice("/dev/input/event3", alphaKeys...)
	opener := &fakeOpener{devices: map[string]*fakeDevice{dev.path: dev}}
	failing := func(string) (Device, error) { return nil, syscall.EACCES }
	m := newManager(failing, opener.open, noopLogger{})

	if _, err := m.Grab(dev.path); err != nil {
		t.Fatalf("Grab() error = %v", err)
	}
	m.Release(dev.path)
	if writes := dev.ledWrites(); len(writes) != 0 {
		t.Fatalf("read-only device received LED writes %v", writes)
	}
}

func TestGrabFailureReturnsGrabError(t *testing.T) {
	dev := newFakeDevice("/dev/input/event3", alphaKeys...)
	dev.grabErr = syscall.EBUSY
	m, _ := newTestManager(dev)

	_, err := m.Grab(dev.path)
	var grabErr *GrabError
	if !errors.As(err, &grabErr) {
		t.Fatalf("Grab() error = %v, want *GrabError", err)
	}
	if grabErr.Path != dev.path || grabErr.Name != dev.name {
		t.Fatalf("GrabError = %+v", grabErr)
	}
	if !errors.Is(err, syscall.EBUSY) {
		t.Fatalf("GrabError must wrap the cause: %v", err)
	}
	if dev.closes() != 1 {
		t.Fatalf("failed grab must close the handle, closes=%d", dev.closes())
	}
	if len(m.Grabbed()) != 0 {
		t.Fatalf("failed grab left entries %v", m.Grabbed())
	}

	if _, err := m.Grab("/dev/input/missing"); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Grab(missing) error = %v, want ErrDeviceUnavailable", err)
	}
}

func TestGrabIsNoOpWhenAlreadyHeld(t *testing.T) {
	dev := newFakeDevice("/dev/input/event3", alphaKeys...)
	m, _ := newTestManager(dev)

	first, err := m.Grab(dev.path)
	if err != nil {
		t.Fatalf("Grab() error = %v", err)
	}
	second, err := m.Grab(dev.path)
	if err != nil {
		t.Fatalf("second Grab() error = %v", err)
	}
	if first != second || len(m.Grabbed()) != 1 {
		t.Fatalf("second grab must return the held device")
	}
}

func TestReleaseAllIsIdempotentAndOrdered(t *testing.T) {
	log := &callLog{}
	var devices []*fakeDevice
	for _, n := range []int{7, 2, 5} {
		dev := newFakeDevice(fmt.Sprintf("/dev/input/event%d", n), alphaKeys...)
		dev.log = log
		devices = append(devices, dev)
	}
	m, _ := newTestManager(devices...)
	for _, dev := range devices {
		if _, err := m.Grab(dev.path); err != nil {
			t.Fatalf("Grab(%s) error = %v", dev.path, err)
		}
	}

	m.ReleaseAll()
	m.ReleaseAll()
	m.Release("/dev/input/event2")

	for _, dev := range devices {
		if dev.isGrabbed() || dev.closes() != 1 {
			t.Fatalf("%s grabbed=%v closes=%d", dev.path, dev.isGrabbed(), dev.closes())
		}
	}
	if len(m.Grabbed()) != 0 {
		t.Fatalf("Grabbed() = %v after ReleaseAll", m.Grabbed())
	}

	var releases []string
	for _, call := range log.snapshot() {
		if strings.HasPrefix(call, "ungrab ") {
			releases = append(releases, strings.TrimPrefix(call, "ungrab "))
		}
	}
	want := "/dev/input/event2,/dev/input/event5,/dev/input/event7"
	if strings.Join(releases, ",") != want {
		t.Fatalf("release order = %v, want %s", releases, want)
	}
}
