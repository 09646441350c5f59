package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

const defaultTimestampLayout = "2006-01-02 15:04:05"

// Collaborators are the external operations the executor may invoke. Any of them may be nil;
// actions that need a missing collaborator fail with ErrUnavailable.
type Collaborators struct {
	Runner    Runner
	Launcher  Launcher
	Keys      KeySender
	Clipboard Clipboard
	Now       func() time.Time
}

// Executor turns an ActionDescriptor into exactly one external operation.
type Executor struct {
	c            Collaborators
	alternatives map[string][]string
	logger       keymap.Logger
}

func NewExecutor(c Collaborators, logger keymap.Logger) *Executor {
	if c.Now == nil {
		c.Now = time.Now
	}
	return &Executor{
		c:            c,
		alternatives: defaultAlternatives(),
		logger:       logger,
	}
}

// Execute runs the action and never panics; collaborator failures come back as a failed Result.
func (e *Executor) Execute(ctx context.Context, action keymap.ActionDescriptor) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Errorf("action %s panicked: %v", action, r))
		}
		result.Duration = time.Since(start)
		if !result.Success && result.Err == nil {
			result.Err = errors.New("action failed")
		}
		if result.Err != nil {
			e.logger.Warn("Action failed", "key", action.Key, "kind", action.Kind, "action", action.Action, "err", result.Err)
		} else {
			e.logger.Info("Action done", "key", action.Key, "kind", action.Kind, "action", action.Action, "via", result.Via)
		}
	}()

	switch action.Kind {
	case keymap.KindVolume:
		return e.volume(ctx, action)
	case keymap.KindMedia:
		return e.media(ctx, action)
	case keymap.KindApplication:
		return e.application(action)
	case keymap.KindCommand:
		return e.command(ctx, action)
	case keymap.KindText:
		return e.text(action)
	case keymap.KindKeySequence:
		return e.keySequence(action)
	case keymap.KindURL:
		return e.url(action)
	case keymap.KindSystem:
		return e.system(ctx, action)
	default:
		return failure(fmt.Errorf("%w: %q", ErrUnknownKind, action.Kind))
	}
}

func unknownAction(action keymap.ActionDescriptor) Result {
	return failure(fmt.Errorf("%w %q for kind %s", ErrUnknownAction, action.Action, action.Kind))
}

func requireValue(action keymap.ActionDescriptor) (string, error) {
	value, ok := action.StringValue()
	if !ok {
		return "", fmt.Errorf("%w: %s:%s", ErrMissingValue, action.Kind, action.Action)
	}
	return value, nil
}

func (e *Executor) volume(ctx context.Context, action keymap.ActionDescriptor) Result {
	step := action.IntValue(5)
	if step <= 0 || step > 100 {
		step = 5
	}
	percent := strconv.Itoa(step) + "%"

	var primary, fallback []string
	switch action.Action {
	case "mute":
		primary = []string{"pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"}
		fallback = []string{"amixer", "-D", "pulse", "sset", "Master", "toggle"}
	case "volume_up":
		primary = []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+" + percent}
		fallback = []string{"amixer", "-D", "pulse", "sset", "Master", percent + "+", "unmute"}
	case "volume_down":
		primary = []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "-" + percent}
		fallback = []string{"amixer", "-D", "pulse", "sset", "Master", percent + "-", "unmute"}
	default:
		return unknownAction(action)
	}

	result := e.run(ctx, primary)
	if result.Success {
		return result
	}
	e.logger.Debug("Primary volume control failed, trying fallback", "tool", primary[0], "err", result.Err)
	fallbackResult := e.run(ctx, fallback)
	if fallbackResult.Success {
		return fallbackResult
	}
	return failure(errors.Join(result.Err, fallbackResult.Err))
}

var mediaCommands = map[string]struct {
	playerctl string
	key       string
}{
	"play_pause":     {"play-pause", "KEY_PLAYPAUSE"},
	"play":           {"play", "KEY_PLAYCD"},
	"pause":          {"pause", "KEY_PAUSECD"},
	"stop":           {"stop", "KEY_STOPCD"},
	"next_track":     {"next", "KEY_NEXTSONG"},
	"previous_track": {"previous", "KEY_PREVIOUSSONG"},
}

func (e *Executor) media(ctx context.Context, action keymap.ActionDescriptor) Result {
	cmd, ok := mediaCommands[action.Action]
	if !ok {
		return unknownAction(action)
	}

	result := e.run(ctx, []string{"playerctl", cmd.playerctl})
	if result.Success {
		return result
	}
	e.logger.Debug("playerctl failed, sending media key", "key", cmd.key, "err", result.Err)
	if e.c.Keys == nil {
		return failure(errors.Join(result.Err, fmt.Errorf("%w: key sender", ErrUnavailable)))
	}
	if err := e.c.Keys.SendChord(cmd.key); err != nil {
		return failure(errors.Join(result.Err, fmt.Errorf("send %s: %w", cmd.key, err)))
	}
	return success("keys", "")
}

func (e *Executor) application(action keymap.ActionDescriptor) Result {
	if action.Action != "launch" {
		return unknownAction(action)
	}
	value, err := requireValue(action)
	if err != nil {
		return failure(err)
	}
	if e.c.Launcher == nil {
		return failure(fmt.Errorf("%w: launcher", ErrUnavailable))
	}

	fields := strings.Fields(value)
	program, args := fields[0], fields[1:]
	candidates := append([]string{program}, e.alternatives[program]...)

	for _, candidate := range candidates {
		err := e.c.Launcher.Launch(candidate, args...)
		if err == nil {
			if candidate != program {
				e.logger.Info("Launched alternative application", "requested", program, "launched", candidate)
			}
			return success(candidate, "")
		}
		if !errors.Is(err, ErrNotFound) {
			return failure(fmt.Errorf("launch %s: %w", candidate, err))
		}
		e.logger.Debug("Application not found", "name", candidate)
	}
	return failure(fmt.Errorf("%w: %s (tried %s)", ErrNotFound, program, strings.Join(candidates, ", ")))
}

func (e *Executor) command(ctx context.Context, action keymap.ActionDescriptor) Result {
	if action.Action != "execute" {
		return unknownAction(action)
	}
	value, err := requireValue(action)
	if err != nil {
		return failure(err)
	}
	return e.run(ctx, []string{"sh", "-c", value})
}

func (e *Executor) text(action keymap.ActionDescriptor) Result {
	switch action.Action {
	case "type":
		value, err := requireValue(action)
		if err != nil {
			return failure(err)
		}
		return e.typeText(value)
	case "timestamp":
		layout, ok := action.StringValue()
		if !ok {
			layout = defaultTimestampLayout
		}
		return e.typeText(e.c.Now().Format(layout))
	case "copy", "paste":
		value, err := requireValue(action)
		if err != nil {
			return failure(err)
		}
		if e.c.Clipboard == nil {
			return failure(fmt.Errorf("%w: clipboard", ErrUnavailable))
		}
		if err := e.c.Clipboard.WriteAll(value); err != nil {
			return failure(fmt.Errorf("write clipboard: %w", err))
		}
		if action.Action == "copy" {
			return success("clipboard", "")
		}
		return e.sendChords("ctrl+v")
	default:
		return unknownAction(action)
	}
}

func (e *Executor) typeText(text string) Result {
	if e.c.Keys == nil {
		return failure(fmt.Errorf("%w: key sender", ErrUnavailable))
	}
	if err := e.c.Keys.TypeText(text); err != nil {
		return failure(fmt.Errorf("type text: %w", err))
	}
	return success("keys", "")
}

func (e *Executor) keySequence(action keymap.ActionDescriptor) Result {
	if action.Action != "send" {
		return unknownAction(action)
	}
	value, err := requireValue(action)
	if err != nil {
		return failure(err)
	}
	return e.sendChords(value)
}

func (e *Executor) sendChords(sequence string) Result {
	if e.c.Keys == nil {
		return failure(fmt.Errorf("%w: key sender", ErrUnavailable))
	}
	for _, chord := range strings.Fields(sequence) {
		if err := e.c.Keys.SendChord(chord); err != nil {
			return failure(fmt.Errorf("send %s: %w", chord, err))
		}
	}
	return success("keys", "")
}

func (e *Executor) url(action keymap.ActionDescriptor) Result {
	if action.Action != "open" {
		return unknownAction(action)
	}
	value, err := requireValue(action)
	if err != nil {
		return failure(err)
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" {
		return failure(fmt.Errorf("invalid url %q", value))
	}
	if e.c.Launcher == nil {
		return failure(fmt.Errorf("%w: launcher", ErrUnavailable))
	}
	if err := e.c.Launcher.Launch("xdg-open", parsed.String()); err != nil {
		return failure(fmt.Errorf("open %s: %w", parsed, err))
	}
	return success("xdg-open", "")
}

var systemCommands = map[string][][]string{
	"lock":         {{"loginctl", "lock-session"}, {"xdg-screensaver", "lock"}},
	"suspend":      {{"systemctl", "suspend"}},
	"screenshot":   {{"gnome-screenshot"}, {"grim"}},
	"show_desktop": {{"wmctrl", "-k", "on"}},
	"logout":       {{"loginctl", "terminate-user", "$USER"}},
}

func (e *Executor) system(ctx context.Context, action keymap.ActionDescriptor) Result {
	commands, ok := systemCommands[action.Action]
	if !ok {
		return unknownAction(action)
	}
	var errs []error
	for _, argv := range commands {
		expanded := make([]string, len(argv))
		for i, arg := range argv {
			expanded[i] = os.ExpandEnv(arg)
		}
		result := e.run(ctx, expanded)
		if result.Success {
			return result
		}
		errs = append(errs, result.Err)
	}
	return failure(errors.Join(errs...))
}

func (e *Executor) run(ctx context.Context, argv []string) Result {
	if e.c.Runner == nil {
		return failure(fmt.Errorf("%w: runner", ErrUnavailable))
	}
	res, err := e.c.Runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return failure(fmt.Errorf("run %s: %w", argv[0], err))
	}
	if res.ExitCode != 0 {
		return Result{
			Via:    argv[0],
			Output: res.Stdout,
			Err:    fmt.Errorf("%w: %s exited %d: %s", ErrNonZeroExit, argv[0], res.ExitCode, strings.TrimSpace(res.Stderr)),
		}
	}
	return success(argv[0], strings.TrimSpace(res.Stdout))
}

func defaultAlternatives() map[string][]string {
	return map[string][]string{
		"firefox":        {"firefox-esr", "firefox-bin"},
		"code":           {"code-insiders", "codium", "vscodium"},
		"nautilus":       {"thunar", "dolphin", "pcmanfm", "nemo"},
		"gnome-terminal": {"konsole", "xterm", "terminator", "alacritty"},
	}
}
