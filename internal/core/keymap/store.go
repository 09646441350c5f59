package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultProfileName = "default"

// ErrProfileNotFound is returned when a named profile has no file and cannot be synthesized.
var ErrProfileNotFound = errors.New("profile not found")

// Store reads and writes profile documents in a directory, one <name>.json per profile.
type Store struct {
	dir    string
	logger Logger
}

func NewStore(dir string, logger Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads and validates the named profile. The default profile is written to disk
// the first time it is requested.
func (s *Store) Load(name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid profile name %q", name)
	}

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if name != DefaultProfileName {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, path)
		}
		if err := s.writeDefault(path); err != nil {
			return nil, err
		}
		s.logger.Info("Created default profile", "path", path)
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	return Parse(data, path)
}

// List returns the names of the profiles present in the store directory.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile validates a profile document at an arbitrary path.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	return Parse(data, path)
}

func (s *Store) writeDefault(path string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}

	data, err := json.MarshalIndent(defaultProfile(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write default profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to persist default profile: %w", err)
	}
	return nil
}

func defaultProfile() profileDocument {
	return profileDocument{
		Name:        "Default Profile",
		Version:     1,
		Description: "Basic macro keyboard mappings",
		Keymaps: map[string]mappingDocument{
			"KEY_F13": {Kind: string(KindVolume), Action: "mute", Description: "Toggle mute"},
			"KEY_F14": {Kind: string(KindVolume), Action: "volume_down", Value: 5, Description: "Volume down 5%"},
			"KEY_F15": {Kind: string(KindVolume), Action: "volume_up", Value: 5, Description: "Volume up 5%"},
			"KEY_F16": {Kind: string(KindMedia), Action: "play_pause", Description: "Play/Pause media"},
			"KEY_F17": {Kind: string(KindMedia), Action: "next_track", Description: "Next track"},
			"KEY_F18": {Kind: string(KindMedia), Action: "previous_track", Description: "Previous track"},
			"KEY_F19": {Kind: string(KindApplication), Action: "launch", Value: "gnome-terminal", Description: "Launch terminal"},
			"KEY_F20": {Kind: string(KindKeySequence), Action: "send", Value: "ctrl+c", Description: "Copy"},
		},
	}
}
