//go:build linux

package linuxinput

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func TestScanSkipsUnavailableAndInjectorDevices(t *testing.T) {
	keyboard := newFakeDevice("/dev/input/event4", keyRange(evdev.KEY_ESC, evdev.KEY_COMPOSE)...)
	keyboard.name = "Keychron K2"
	keyboard.phys = "usb-1/input0"
	injector := newFakeDevice("/dev/input/event9", alphaKeys...)
	injector.name = InjectorName
	virtual := newFakeDevice("/dev/input/event7", alphaKeys...)
	virtual.id = evdev.InputID{BusType: uint16(evdev.BUS_VIRTUAL)}
	opener := &fakeOpener{devices: map[string]*fakeDevice{
		keyboard.path: keyboard,
		injector.path: injector,
		virtual.path:  virtual,
	}}

	s := &Scanner{
		listPaths: func() ([]evdev.InputPath, error) {
			return []evdev.InputPath{
				{Path: "/dev/input/event9", Name: "injector"},
				{Path: "/dev/input/event4", Name: "kbd"},
				{Path: "/dev/input/event1", Name: "locked"},
				{Path: "/dev/input/event7", Name: "virtual"},
			}, nil
		},
		open:   opener.open,
		logger: noopLogger{},
	}

	devices, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Scan() returned %d devices, want 2", len(devices))
	}
	if devices[0].Path != keyboard.path || devices[1].Path != virtual.path {
		t.Fatalf("Scan() order = %s, %s", devices[0].Path, devices[1].Path)
	}
	if devices[0].Name != "Keychron K2" || devices[0].Phys != "usb-1/input0" {
		t.Fatalf("probe did not read device attributes: %+v", devices[0].DeviceInfo)
	}
	if devices[0].Classification.Layout != LayoutFullSize {
		t.Fatalf("Layout = %s, want full_size", devices[0].Classification.Layout)
	}
	if !devices[1].IsVirtual {
		t.Fatalf("virtual bus device not flagged")
	}
	if keyboard.closes() != 1 || keyboard.isGrabbed() {
		t.Fatalf("scan must close probe handles without grabbing")
	}

	if kbds := Keyboards(devices); len(kbds) != 1 || kbds[0].Path != keyboard.path {
		t.Fatalf("Keyboards() = %v", kbds)
	}
}
