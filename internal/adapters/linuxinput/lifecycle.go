package linuxinput

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"syscall"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// GrabError reports a device that could not be taken for exclusive use.
type GrabError struct {
	Path string
	Name string
	Err  error
}

func (e *GrabError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("grab %s (%s): %v", e.Path, e.Name, e.Err)
	}
	return fmt.Sprintf("grab %s: %v", e.Path, e.Err)
}

func (e *GrabError) Unwrap() error {
	return e.Err
}

type grabbedDevice struct {
	dev       Device
	name      string
	leds      LEDState
	ledsSaved bool
	writable  bool
}

// Manager owns every grabbed device. All changes to the grabbed set go through its mutex.
type Manager struct {
	openRW OpenFunc
	openRO OpenFunc
	logger keymap.Logger

	mu       sync.Mutex
	grabbed  map[string]*grabbedDevice
	lastLEDs LEDState
	haveLast bool
}

func NewManager(logger keymap.Logger) *Manager {
	return newManager(openReadWrite, openReadOnly, logger)
}

func newManager(openRW, openRO OpenFunc, logger keymap.Logger) *Manager {
	return &Manager{
		openRW:  openRW,
		openRO:  openRO,
		logger:  logger,
		grabbed: make(map[string]*grabbedDevice),
	}
}

// Grab opens path, snapshots its LEDs and takes an exclusive grab. Grabbing a path that is
// already held returns the held device.
func (m *Manager) Grab(path string) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, ok := m.grabbed[path]; ok {
		return held.dev, nil
	}

	writable := true
	dev, err := m.openRW(path)
	if err != nil {
		m.logger.Debug("Read-write open failed, retrying read-only", "path", path, "err", err)
		writable = false
		var roErr error
		dev, roErr = m.openRO(path)
		if roErr != nil {
			return nil, &GrabError{Path: path, Err: fmt.Errorf("%w: %v", ErrDeviceUnavailable, roErr)}
		}
		m.logger.Warn("Opened device read-only; LED state will not be restored", "path", path)
	}

	entry := &grabbedDevice{dev: dev, writable: writable}
	entry.name, _ = dev.Name()

	if leds, err := readLEDs(dev); err == nil {
		entry.leds = leds
		entry.ledsSaved = true
	} else {
		m.logger.Debug("LED snapshot unavailable", "path", path, "err", err)
	}

	if err := dev.Grab(); err != nil {
		_ = dev.Close()
		if errors.Is(err, syscall.EBUSY) {
			err = fmt.Errorf("device is grabbed by another process: %w", err)
		}
		return nil, &GrabError{Path: path, Name: entry.name, Err: err}
	}
	if err := dev.NonBlock(); err != nil {
		_ = dev.Ungrab()
		_ = dev.Close()
		return nil, &GrabError{Path: path, Name: entry.name, Err: fmt.Errorf("set nonblocking mode: %w", err)}
	}

	m.grabbed[path] = entry
	if entry.ledsSaved {
		m.lastLEDs = entry.leds
		m.haveLast = true
	}
	m.logger.Info("Grabbed device", "path", path, "name", entry.name, "leds", entry.leds.String())
	return dev, nil
}

// Release ungrabs path, restores its LEDs and closes it. Failures are logged, never returned.
func (m *Manager) Release(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(path)
}

// ReleaseAll releases every held device in path order. Safe to call repeatedly.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range m.pathsLocked() {
		m.releaseLocked(path)
	}
}

func (m *Manager) releaseLocked(path string) {
	entry, ok := m.grabbed[path]
	if !ok {
		return
	}

	if err := entry.dev.Ungrab(); err != nil && !isDeviceClosedError(err) {
		m.logger.Warn("Failed to ungrab device", "path", path, "err", err)
	}
	delete(m.grabbed, path)

	if entry.writable {
		state, ok := entry.leds, entry.ledsSaved
		if !ok && m.haveLast {
			state, ok = m.lastLEDs, true
		}
		if ok {
			if err := writeLEDs(entry.dev, state); err != nil {
				m.logger.Warn("Failed to restore LED state", "path", path, "err", err)
			}
		}
	}

	if err := entry.dev.Close(); err != nil && !isDeviceClosedError(err) {
		m.logger.Warn("Failed to close device", "path", path, "err", err)
	}
	m.logger.Info("Released device", "path", path, "name", entry.name)
}

func (m *Manager) pathsLocked() []string {
	paths := make([]string, 0, len(m.grabbed))
	for path := range m.grabbed {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Grabbed returns the held paths in order.
func (m *Manager) Grabbed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pathsLocked()
}

// Device returns the held device at path.
func (m *Manager) Device(path string) (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.grabbed[path]
	if !ok {
		return nil, false
	}
	return entry.dev, true
}
