package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mr-Niloy/ColdKeys/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("ParseLevel(verbose) expected error")
	}
}

func TestNewTeesToFile(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "coldkeys.log")

	logger, closer, err := New(config.LoggingConfig{Level: "warn", File: path}, &stderr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("Device lost", "path", "/dev/input/event3")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, out := range []string{stderr.String(), string(data)} {
		if strings.Contains(out, "hidden") {
			t.Fatalf("info record passed a warn level filter: %q", out)
		}
		if !strings.Contains(out, "path=/dev/input/event3") {
			t.Fatalf("warn record missing: %q", out)
		}
	}
}

func TestNewTraceWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	trace, closer, err := NewTrace(config.TraceConfig{File: path})
	if err != nil {
		t.Fatalf("NewTrace() error = %v", err)
	}
	trace.Debug("key_event", "key", "KEY_F13")
	trace.Info("action_done", "success", true)
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("trace has %d lines, want 2", len(lines))
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if record["msg"] != "key_event" || record["key"] != "KEY_F13" {
		t.Fatalf("record = %v", record)
	}
}

func TestNewTraceDisabled(t *testing.T) {
	trace, closer, err := NewTrace(config.TraceConfig{})
	if err != nil {
		t.Fatalf("NewTrace() error = %v", err)
	}
	trace.Info("dropped")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
