//go:build linux

package linuxinput

import (
	"fmt"
	"sort"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// Scanner enumerates and classifies input nodes without grabbing them.
type Scanner struct {
	listPaths func() ([]evdev.InputPath, error)
	open      OpenFunc
	logger    keymap.Logger
}

func NewScanner(logger keymap.Logger) *Scanner {
	return &Scanner{
		listPaths: evdev.ListDevicePaths,
		open:      openReadOnly,
		logger:    logger,
	}
}

// Scan probes every node in path order. Nodes that cannot be opened are logged and skipped.
func (s *Scanner) Scan() ([]ScannedDevice, error) {
	paths, err := s.listPaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]ScannedDevice, 0, len(paths))
	for _, path := range paths {
		scanned, err := s.probe(path)
		if err != nil {
			s.logger.Warn("Skipping input device", "path", path.Path, "err", err)
			continue
		}
		if scanned.Name == InjectorName {
			continue
		}
		devices = append(devices, scanned)
	}
	return devices, nil
}

func (s *Scanner) probe(path evdev.InputPath) (ScannedDevice, error) {
	dev, err := s.open(path.Path)
	if err != nil {
		if isPermissionError(err) {
			return ScannedDevice{}, fmt.Errorf("%w: %s: permission denied (add the user to the input group or run as root)", ErrDeviceUnavailable, path.Path)
		}
		return ScannedDevice{}, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, path.Path, err)
	}
	defer dev.Close()

	info := DeviceInfo{Path: path.Path, Name: path.Name}
	if name, err := dev.Name(); err == nil && name != "" {
		info.Name = name
	}
	if phys, err := dev.PhysicalLocation(); err == nil {
		info.Phys = phys
	}
	id, idErr := dev.InputID()
	if idErr == nil {
		info.ID = id
	}
	info.IsVirtual = deviceIsVirtual(id, idErr == nil, info.Name)

	caps := CapabilitiesOf(dev)
	return ScannedDevice{
		DeviceInfo:     info,
		Capabilities:   caps,
		Classification: Classify(caps),
	}, nil
}
