package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mr-Niloy/ColdKeys/internal/config"
)

var version = "0.1.0"

const (
	exitOK          = 0
	exitFault       = 1
	exitUsage       = 2
	exitNothingToDo = 3
)

// errNothingToDo ends the process with exitNothingToDo: no devices were found or none
// were selected.
var errNothingToDo = errors.New("nothing to do")

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

type options struct {
	configPath    string
	logLevel      string
	profile       string
	profilesDir   string
	devices       []string
	keySender     string
	metricsListen string
	traceFile     string
}

type app struct {
	opts   options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// loadConfig layers command line flags over the config file and environment.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.opts.logLevel
	}
	if flags.Changed("profile") {
		cfg.Profiles.Active = a.opts.profile
	}
	if flags.Changed("profiles-dir") {
		cfg.Profiles.Dir = a.opts.profilesDir
	}
	if flags.Changed("device") {
		cfg.Devices = a.opts.devices
	}
	if flags.Changed("key-sender") {
		cfg.Input.KeySender = strings.ToLower(strings.TrimSpace(a.opts.keySender))
	}
	if flags.Changed("metrics-listen") {
		cfg.Metrics.Listen = a.opts.metricsListen
	}
	if flags.Changed("trace-file") {
		cfg.Trace.File = a.opts.traceFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

func addDaemonFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringArrayVarP(&o.devices, "device", "d", nil, "Device path to grab, e.g. /dev/input/event4 (repeatable). Prompts if omitted.")
	f.StringVar(&o.keySender, "key-sender", config.KeySenderAuto, "Synthetic input backend: auto|uinput|x11|none.")
	f.StringVar(&o.metricsListen, "metrics-listen", "", "Serve /metrics, /status and /devices on this address, e.g. 127.0.0.1:9750.")
	f.StringVar(&o.traceFile, "trace-file", "", "Append the JSON lines event trace to this file.")
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "coldkeys",
		Short: "Keyboard remapping daemon for Linux evdev devices",
		Long: `ColdKeys grabs selected keyboards exclusively and turns their key presses into
actions from a JSON profile: volume and media control, launching programs, shell
commands, typed text, key sequences, URLs and system actions.

Run without a command to start the daemon.

Examples:
  coldkeys                              # Pick keyboards interactively and run
  coldkeys run -d /dev/input/event4     # Grab a specific device
  coldkeys run -p gaming                # Use the 'gaming' profile
  coldkeys list-devices --groups        # Show keyboards grouped by physical unit
  coldkeys capture                      # Print the identity of the next key press
  coldkeys profile validate pad.json    # Check a profile document`,
		Version:       version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDaemon(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.configPath, "config", "c", "", "Config file (default: "+config.DefaultPath()+").")
	pf.StringVar(&a.opts.logLevel, "log-level", "info", "Log verbosity: debug, info, warning, error.")
	pf.StringVarP(&a.opts.profile, "profile", "p", "", "Profile to activate (default: profiles.active from config).")
	pf.StringVar(&a.opts.profilesDir, "profiles-dir", "", "Directory holding <name>.json profiles.")
	addDaemonFlags(root, &a.opts)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Grab the selected keyboards and dispatch mapped keys",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDaemon(cmd)
		},
	}
	addDaemonFlags(runCmd, &a.opts)

	root.AddCommand(runCmd, newListDevicesCmd(a), newCaptureCmd(a), newProfileCmd(a))
	return root
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var usage *usageError
	switch {
	case errors.Is(err, errNothingToDo):
		fmt.Fprintln(stderr, err)
		return exitNothingToDo
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run 'coldkeys --help' for usage.")
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
		}
		return exitFault
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	return exitCode(root.Execute(), stderr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
