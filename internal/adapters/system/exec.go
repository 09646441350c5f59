package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// Runner runs external commands to completion.
type Runner struct {
	// Env is appended to the inherited environment.
	Env []string
}

func (r Runner) Run(ctx context.Context, name string, args ...string) (dispatch.CommandResult, error) {
	path, err := lookPath(name)
	if err != nil {
		return dispatch.CommandResult{}, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result := dispatch.CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case ctx.Err() != nil:
		return result, fmt.Errorf("%s: %w", name, ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		return result, fmt.Errorf("%s: %w", name, err)
	}
}

// Launcher starts detached programs and reaps them in the background.
type Launcher struct {
	logger keymap.Logger
}

func NewLauncher(logger keymap.Logger) *Launcher {
	return &Launcher{logger: logger}
}

func (l *Launcher) Launch(name string, args ...string) error {
	path, err := lookPath(name)
	if err != nil {
		return err
	}

	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	l.logger.Debug("Launched process", "name", name, "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("Launched process exited", "name", name, "err", err)
		}
	}()
	return nil
}

func lookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", dispatch.ErrNotFound, name)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return path, nil
}
