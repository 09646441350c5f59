package linuxinput

import (
	"fmt"
	"sync"
	"syscall"

	evdev "github.com/holoplot/go-evdev"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// callLog records device operations across fakes so tests can assert ordering.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeDevice struct {
	mu sync.Mutex

	path string
	name string
	phys string
	id   evdev.InputID
	caps map[evdev.EvType][]evdev.EvCode

	leds     evdev.StateMap
	ledErr   error
	grabErr  error
	writeErr error

	grabbed    bool
	closeCount int
	written    []evdev.InputEvent

	batches [][]evdev.InputEvent
	readErr error

	log *callLog
}

func newFakeDevice(path string, keys ...evdev.EvCode) *fakeDevice {
	return &fakeDevice{
		path: path,
		name: "Fake Keyboard " + path,
		caps: map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: keys},
		leds: evdev.StateMap{},
	}
}

func (d *fakeDevice) Path() string { return d.path }

func (d *fakeDevice) Name() (string, error) { return d.name, nil }

func (d *fakeDevice) PhysicalLocation() (string, error) { return d.phys, nil }

func (d *fakeDevice) InputID() (evdev.InputID, error) { return d.id, nil }

func (d *fakeDevice) CapableEvents(t evdev.EvType) []evdev.EvCode {
	return d.caps[t]
}

func (d *fakeDevice) State(t evdev.EvType) (evdev.StateMap, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ledErr != nil {
		return nil, d.ledErr
	}
	state := evdev.StateMap{}
	for code, on := range d.leds {
		state[code] = on
	}
	return state, nil
}

func (d *fakeDevice) Grab() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.grabErr != nil {
		return d.grabErr
	}
	d.grabbed = true
	d.log.add("grab %s", d.path)
	return nil
}

func (d *fakeDevice) Ungrab() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grabbed = false
	d.log.add("ungrab %s", d.path)
	return nil
}

func (d *fakeDevice) NonBlock() error { return nil }

func (d *fakeDevice) ReadSlice(int) ([]evdev.InputEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closeCount > 0 {
		return nil, syscall.EBADF
	}
	if len(d.batches) > 0 {
		batch := d.batches[0]
		d.batches = d.batches[1:]
		return batch, nil
	}
	if d.readErr != nil {
		return nil, d.readErr
	}
	return nil, syscall.EAGAIN
}

func (d *fakeDevice) WriteOne(event *evdev.InputEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.written = append(d.written, *event)
	if event.Type == evdev.EV_LED {
		d.leds[event.Code] = event.Value != 0
	}
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCount++
	d.log.add("close %s", d.path)
	return nil
}

// push queues one read batch.
func (d *fakeDevice) push(events ...evdev.InputEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, events)
}

func (d *fakeDevice) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readErr = err
}

func (d *fakeDevice) isGrabbed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grabbed
}

func (d *fakeDevice) closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCount
}

func (d *fakeDevice) ledWrites() []evdev.InputEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []evdev.InputEvent
	for _, ev := range d.written {
		if ev.Type == evdev.EV_LED {
			out = append(out, ev)
		}
	}
	return out
}

func keyDown(code evdev.EvCode) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: 1}
}

func keyUp(code evdev.EvCode) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: 0}
}

func synReport() evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}
}

// fakeOpener serves fake devices by path.
type fakeOpener struct {
	devices map[string]*fakeDevice
	err     error
}

func (o *fakeOpener) open(path string) (Device, error) {
	if o.err != nil {
		return nil, o.err
	}
	dev, ok := o.devices[path]
	if !ok {
		return nil, syscall.ENOENT
	}
	return dev, nil
}
