package dispatch

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownKind   = errors.New("unknown action kind")
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingValue  = errors.New("action requires a value")
	ErrNotFound      = errors.New("executable not found")
	ErrNonZeroExit   = errors.New("command exited with non-zero status")
	ErrUnavailable   = errors.New("collaborator unavailable")
)

// CommandResult is the outcome of a synchronous external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs an external command to completion. A missing executable must be
// reported as an error wrapping ErrNotFound.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// Launcher starts a detached process without waiting for it. A missing executable must be
// reported as an error wrapping ErrNotFound.
type Launcher interface {
	Launch(name string, args ...string) error
}

// KeySender injects synthetic input. Chords use "+"-joined names such as "ctrl+shift+t"
// or "KEY_PLAYPAUSE".
type KeySender interface {
	SendChord(chord string) error
	TypeText(text string) error
}

type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Result is the structured outcome of executing one action.
type Result struct {
	Success  bool
	Output   string
	Via      string
	Err      error
	Duration time.Duration
}

func success(via, output string) Result {
	return Result{Success: true, Via: via, Output: output}
}

func failure(err error) Result {
	return Result{Err: err}
}
