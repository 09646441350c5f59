package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mr-Niloy/ColdKeys/internal/config"
)

// selectionSettings remembers the last interactive device choice.
type selectionSettings struct {
	Devices []string `json:"devices"`
	Profile string   `json:"profile,omitempty"`
}

func selectionSettingsPath() string {
	return filepath.Join(config.Dir(), "settings.json")
}

func loadSelectionSettings(path string) (*selectionSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s selectionSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return &s, nil
}

func saveSelectionSettings(path string, s selectionSettings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}
