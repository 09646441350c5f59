//go:build linux

package linuxinput

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// Captured is the first non-modifier key press seen by CaptureNextKey.
type Captured struct {
	Event    keymap.KeyEvent
	Identity string
}

// CaptureNextKey waits for the next key press and returns it with the modifiers held at the
// time. If devicePath is empty, it listens on all non-virtual devices with key capabilities.
// Devices are not grabbed.
func CaptureNextKey(ctx context.Context, devicePath string, timeout time.Duration, logger keymap.Logger) (Captured, error) {
	devices, err := openCaptureDevices(devicePath)
	if err != nil {
		return Captured{}, err
	}
	defer closeDevices(devices)

	sources := make([]Source, 0, len(devices))
	for _, dev := range devices {
		sources = append(sources, dev)
	}
	return captureFromSources(ctx, sources, timeout, logger)
}

func captureFromSources(ctx context.Context, sources []Source, timeout time.Duration, logger keymap.Logger) (Captured, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mux := NewMultiplexer(MultiplexerConfig{}, logger)
	go func() {
		<-ctx.Done()
		mux.Stop()
	}()

	held := make(map[string]map[uint16]keymap.Modifiers)
	var (
		result Captured
		found  bool
	)
	err := mux.Listen(sources, func(ev keymap.KeyEvent) {
		if found {
			return
		}
		if mod, ok := keymap.ModifierForKey(ev.Name); ok {
			if held[ev.Device] == nil {
				held[ev.Device] = make(map[uint16]keymap.Modifiers)
			}
			if ev.Transition == keymap.TransitionUp {
				delete(held[ev.Device], ev.Code)
			} else {
				held[ev.Device][ev.Code] = mod
			}
			return
		}
		if ev.Transition != keymap.TransitionDown {
			return
		}
		var mods keymap.Modifiers
		for _, m := range held[ev.Device] {
			mods |= m
		}
		result = Captured{Event: ev, Identity: keymap.Identity(mods, ev.Name)}
		found = true
		mux.Stop()
	})
	if err != nil {
		return Captured{}, err
	}
	if found {
		return result, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Captured{}, fmt.Errorf("timed out waiting for key input")
	}
	if ctx.Err() != nil {
		return Captured{}, ctx.Err()
	}
	return Captured{}, fmt.Errorf("all capture devices were lost")
}

func openCaptureDevices(devicePath string) ([]Device, error) {
	if devicePath != "" {
		dev, err := openReadOnly(devicePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, devicePath, err)
		}
		if len(dev.CapableEvents(evdev.EV_KEY)) == 0 {
			_ = dev.Close()
			return nil, fmt.Errorf("%s does not expose key events", devicePath)
		}
		if err := dev.NonBlock(); err != nil {
			_ = dev.Close()
			return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
		return []Device{dev}, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]Device, 0, len(paths))
	for _, path := range paths {
		dev, err := openReadOnly(path.Path)
		if err != nil {
			continue
		}

		name := path.Name
		if actualName, nameErr := dev.Name(); nameErr == nil && actualName != "" {
			name = actualName
		}
		id, idErr := dev.InputID()
		if deviceIsVirtual(id, idErr == nil, name) || len(dev.CapableEvents(evdev.EV_KEY)) == 0 {
			_ = dev.Close()
			continue
		}
		if err := dev.NonBlock(); err != nil {
			_ = dev.Close()
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no readable input devices with key events found")
	}
	return devices, nil
}

func closeDevices(devices []Device) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}
