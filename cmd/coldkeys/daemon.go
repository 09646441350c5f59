package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/adapters/system"
	"github.com/Mr-Niloy/ColdKeys/internal/config"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
	"github.com/Mr-Niloy/ColdKeys/internal/logging"
	"github.com/Mr-Niloy/ColdKeys/internal/metrics"
	"github.com/Mr-Niloy/ColdKeys/internal/trace"
)

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closeFunc func()

func (f closeFunc) Close() error {
	f()
	return nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return nil, nil, &usageError{err: err}
	}
	return logger, closer, nil
}

func (a *app) runDaemon(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	var cleanup closers
	defer cleanup.Close()

	logger, logCloser, err := newLogger(cfg, a.stderr)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, logCloser)

	traceLogger, traceCloser, err := logging.NewTrace(cfg.Trace)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, traceCloser)
	recorder := trace.NewRecorder(traceLogger)
	if cfg.Trace.MQTT.Broker != "" {
		pub, err := trace.ConnectMQTT(cfg.Trace.MQTT, logger)
		if err != nil {
			logger.Warn("Trace mirror disabled", "err", err)
		} else {
			recorder.Mirror(pub)
			cleanup = append(cleanup, closeFunc(pub.Close))
		}
	}
	collector := metrics.NewCollector()
	observer := fanout{recorder, collector}

	store := keymap.NewStore(cfg.Profiles.Dir, logger)
	resolver := keymap.NewResolver(store, logger)
	if err := resolver.Load(cfg.Profiles.Active); err != nil {
		return err
	}
	active := resolver.Active()
	logger.Info("Profile loaded", "name", active.Name, "mappings", active.Len(), "dir", store.Dir())

	selected, err := a.selectDevices(cfg, logger)
	if err != nil {
		return err
	}

	keys, keysCloser, err := newKeySender(cfg.Input.KeySender, logger)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, keysCloser)

	var collaborators dispatch.Collaborators
	collaborators.Runner = system.Runner{}
	collaborators.Launcher = system.NewLauncher(logger)
	collaborators.Clipboard = system.Clipboard{}
	if keys != nil {
		collaborators.Keys = keys
	}
	executor := dispatch.NewExecutor(collaborators, logger)
	dispatcher := dispatch.NewDispatcher(executor, dispatch.Config{
		Workers:        cfg.Dispatch.Workers,
		QueueSize:      cfg.Dispatch.QueueSize,
		CommandTimeout: cfg.Dispatch.CommandTimeout,
	}, observer, logger)
	cleanup = append(cleanup, closeFunc(dispatcher.Close))

	runtime, err := linuxinput.NewRuntime(
		linuxinput.RuntimeConfig{Devices: selected, PollInterval: cfg.Input.PollInterval},
		linuxinput.NewManager(logger),
		resolver,
		dispatcher,
		observer,
		logger,
	)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := runtime.Start(); err != nil {
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return runtime.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := runtime.Reload(); err != nil {
					logger.Error("Profile reload failed, keeping the current profile", "err", err)
					continue
				}
				logger.Info("Profile reloaded", "name", resolver.Active().Name, "mappings", resolver.Active().Len())
			}
		}
	})
	if cfg.Metrics.Listen != "" {
		handler := metrics.NewRouter(collector, func() metrics.Status {
			p := resolver.Active()
			return metrics.Status{Session: recorder.Session(), Profile: p.Name, Mapped: p.Len()}
		})
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Listen, handler, logger)
		})
	}

	logger.Info("ColdKeys running", "devices", len(runtime.Grabbed()), "profile", active.Name, "session", recorder.Session())
	err = g.Wait()
	runtime.Stop()
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	logger.Info("ColdKeys stopped")
	return nil
}

// selectDevices returns the configured devices, or asks on stdin and remembers the answer.
func (a *app) selectDevices(cfg *config.Config, logger *slog.Logger) ([]linuxinput.ScannedDevice, error) {
	devices, err := scanDevices(logger)
	if err != nil {
		return nil, err
	}

	if len(cfg.Devices) > 0 {
		selected := configuredSelection(cfg.Devices, devices, logger)
		if len(selected) == 0 {
			return nil, fmt.Errorf("%w: none of the configured devices are present", errNothingToDo)
		}
		return selected, nil
	}

	keyboards := linuxinput.Keyboards(devices)
	if len(keyboards) == 0 {
		return nil, fmt.Errorf("%w: no keyboards found", errNothingToDo)
	}

	settingsPath := selectionSettingsPath()
	var remembered []string
	if s, err := loadSelectionSettings(settingsPath); err != nil {
		logger.Warn("Ignoring saved selection", "err", err)
	} else if s != nil {
		remembered = s.Devices
	}

	selected, err := promptSelection(a.stdin, a.stderr, keyboards, remembered)
	if err != nil {
		return nil, err
	}
	if err := saveSelectionSettings(settingsPath, selectionSettings{
		Devices: selectionPaths(selected),
		Profile: cfg.Profiles.Active,
	}); err != nil {
		logger.Warn("Failed to remember selection", "err", err)
	}
	return selected, nil
}
