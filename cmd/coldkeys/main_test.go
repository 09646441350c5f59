package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestProfileValidate(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "pad.json")
	if err := os.WriteFile(valid, []byte(`{"name": "pad", "keymaps": {
  "KEY_F13": {"kind": "volume", "action": "mute"},
  "KEY_C": {"kind": "text", "action": "copy", "value": "x", "modifiers": ["ctrl"]}
}}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	invalid := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(invalid, []byte(`{"name": "broken", "keymaps": {"KEY_F13": {"action": "mute"}}}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	code, stdout, _ := runCLI(t, "profile", "validate", valid)
	if code != exitOK || !strings.Contains(stdout, `profile "pad" version 1, 2 mappings OK`) {
		t.Fatalf("validate valid: code=%d stdout=%q", code, stdout)
	}

	code, _, stderr := runCLI(t, "profile", "validate", invalid)
	if code != exitFault || !strings.Contains(stderr, "broken.json") {
		t.Fatalf("validate invalid: code=%d stderr=%q", code, stderr)
	}
}

func TestProfileShowCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	code, stdout, stderr := runCLI(t, "profile", "show", "--profiles-dir", dir)
	if code != exitOK {
		t.Fatalf("profile show: code=%d stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "Default Profile (version 1)") || !strings.Contains(stdout, "KEY_F13") {
		t.Fatalf("profile show output:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "default.json")); err != nil {
		t.Fatalf("default profile not written: %v", err)
	}

	code, stdout, _ = runCLI(t, "profile", "show", "default", "--profiles-dir", dir, "-o", "yaml")
	if code != exitOK || !strings.Contains(stdout, "identity: KEY_F13") {
		t.Fatalf("yaml output: code=%d\n%s", code, stdout)
	}
}

func TestExitCodes(t *testing.T) {
	if code, _, _ := runCLI(t, "--no-such-flag"); code != exitUsage {
		t.Fatalf("unknown flag exit code = %d, want %d", code, exitUsage)
	}
	if code, _, _ := runCLI(t, "profile", "validate"); code != exitUsage {
		t.Fatalf("missing argument exit code = %d, want %d", code, exitUsage)
	}
	if code, _, _ := runCLI(t, "profile", "show", "-o", "xml"); code != exitUsage {
		t.Fatalf("bad output format exit code = %d, want %d", code, exitUsage)
	}
	if code, _, _ := runCLI(t, "run", "--log-level", "loud"); code != exitUsage {
		t.Fatalf("bad log level exit code = %d, want %d", code, exitUsage)
	}
	if code, _, _ := runCLI(t, "profile", "list", "--profiles-dir", t.TempDir()); code != exitNothingToDo {
		t.Fatalf("empty profile list exit code = %d, want %d", code, exitNothingToDo)
	}
	if code, stdout, _ := runCLI(t, "--help"); code != exitOK || !strings.Contains(stdout, "list-devices") {
		t.Fatalf("--help: code=%d", code)
	}
}

func TestProfileEntrySkeleton(t *testing.T) {
	got := profileEntrySkeleton("CTRL+SHIFT+KEY_F13")
	want := `"KEY_F13": {"kind": "command", "action": "execute", "value": "notify-send CTRL+SHIFT+KEY_F13", "modifiers": ["ctrl", "shift"]}`
	if got != want {
		t.Fatalf("profileEntrySkeleton() = %s\nwant %s", got, want)
	}
}
