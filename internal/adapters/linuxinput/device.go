package linuxinput

import (
	"errors"
	"os"
	"strings"
	"syscall"

	evdev "github.com/holoplot/go-evdev"
)

// Device is an open evdev node. *evdev.InputDevice satisfies it.
type Device interface {
	Path() string
	Name() (string, error)
	PhysicalLocation() (string, error)
	InputID() (evdev.InputID, error)
	CapableEvents(t evdev.EvType) []evdev.EvCode
	State(t evdev.EvType) (evdev.StateMap, error)
	Grab() error
	Ungrab() error
	NonBlock() error
	ReadSlice(count int) ([]evdev.InputEvent, error)
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// OpenFunc opens the device node at path.
type OpenFunc func(path string) (Device, error)

func openReadOnly(path string) (Device, error) {
	dev, err := evdev.OpenWithFlags(path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func openReadWrite(path string) (Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

var ErrDeviceUnavailable = errors.New("input device unavailable")

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV) || errors.Is(err, os.ErrClosed)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM)
}

// InjectorName is the name of the uinput device ColdKeys creates for synthetic input.
const InjectorName = "coldkeys virtual keyboard"

type DeviceInfo struct {
	Path      string
	Name      string
	Phys      string
	ID        evdev.InputID
	IsVirtual bool
}

// ScannedDevice is one probed node. The handle used for probing is already closed.
type ScannedDevice struct {
	DeviceInfo
	Capabilities   Capabilities
	Classification Classification
}

func deviceIsVirtual(id evdev.InputID, hasID bool, name string) bool {
	if hasID && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool", "coldkeys"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// Keyboards returns the physical devices that belong in the keyboard result set.
// Ghost and virtual devices are never included.
func Keyboards(devices []ScannedDevice) []ScannedDevice {
	out := make([]ScannedDevice, 0, len(devices))
	for _, dev := range devices {
		if dev.IsVirtual || !dev.Classification.IsKeyboard() {
			continue
		}
		out = append(out, dev)
	}
	return out
}

// Find returns the scanned device at path.
func Find(devices []ScannedDevice, path string) (ScannedDevice, bool) {
	for _, dev := range devices {
		if dev.Path == path {
			return dev, true
		}
	}
	return ScannedDevice{}, false
}
