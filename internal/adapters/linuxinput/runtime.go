package linuxinput

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

var ErrNoDevicesGrabbed = errors.New("no input devices could be grabbed")

const readerExitTimeout = time.Second

// Submitter accepts resolved actions without blocking. *dispatch.Dispatcher implements it.
type Submitter interface {
	Submit(action keymap.ActionDescriptor, ev keymap.KeyEvent) bool
}

// Observer receives pipeline notifications. Methods are called from the read loop and
// must return quickly.
type Observer interface {
	DeviceGrabbed(info DeviceInfo)
	DeviceReleased(path string)
	DeviceLost(path string, err error)
	KeyEvent(ev keymap.KeyEvent, action *keymap.ActionDescriptor)
}

type RuntimeConfig struct {
	Devices      []ScannedDevice
	PollInterval time.Duration
}

// Runtime wires grab, read, resolve and dispatch for the selected devices.
type Runtime struct {
	cfg       RuntimeConfig
	manager   *Manager
	mux       *Multiplexer
	resolver  *keymap.Resolver
	submitter Submitter
	observer  Observer
	logger    keymap.Logger

	sources []Source

	running    atomic.Bool
	listenDone chan struct{}
	stopOnce   sync.Once
}

func NewRuntime(
	cfg RuntimeConfig,
	manager *Manager,
	resolver *keymap.Resolver,
	submitter Submitter,
	observer Observer,
	logger keymap.Logger,
) (*Runtime, error) {
	if len(cfg.Devices) == 0 {
		return nil, fmt.Errorf("no devices selected")
	}
	if manager == nil || resolver == nil || submitter == nil {
		return nil, fmt.Errorf("runtime requires a manager, resolver and submitter")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if observer == nil {
		observer = nopObserver{}
	}

	r := &Runtime{
		cfg:        cfg,
		manager:    manager,
		mux:        NewMultiplexer(MultiplexerConfig{PollInterval: cfg.PollInterval}, logger),
		resolver:   resolver,
		submitter:  submitter,
		observer:   observer,
		logger:     logger,
		listenDone: make(chan struct{}),
	}
	r.mux.OnLost(r.deviceLost)
	return r, nil
}

// Start grabs every selected device. Devices that cannot be grabbed are logged and
// skipped; it fails only when none could be grabbed.
func (r *Runtime) Start() error {
	var errs []error
	for _, dev := range r.cfg.Devices {
		handle, err := r.manager.Grab(dev.Path)
		if err != nil {
			r.logger.Error("Failed to grab device", "path", dev.Path, "name", dev.Name, "err", err)
			errs = append(errs, err)
			continue
		}
		r.sources = append(r.sources, handle)
		r.observer.DeviceGrabbed(dev.DeviceInfo)
	}
	if len(r.sources) == 0 {
		return fmt.Errorf("%w: %w", ErrNoDevicesGrabbed, errors.Join(errs...))
	}
	return nil
}

// Run reads events until ctx is done, Stop is called or every device is lost. It
// always releases the grabbed devices before returning.
func (r *Runtime) Run(ctx context.Context) error {
	if len(r.sources) == 0 {
		return ErrNoDevicesGrabbed
	}
	r.running.Store(true)

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			r.mux.Stop()
		case <-watchDone:
		}
	}()

	err := r.mux.Listen(r.sources, r.handle)
	close(watchDone)
	close(r.listenDone)
	r.Stop()
	return err
}

func (r *Runtime) handle(ev keymap.KeyEvent) {
	action, ok := r.resolver.Resolve(ev)
	if !ok {
		r.observer.KeyEvent(ev, nil)
		return
	}
	r.observer.KeyEvent(ev, &action)
	r.submitter.Submit(action, ev)
}

func (r *Runtime) deviceLost(path string, err error) {
	r.manager.Release(path)
	r.resolver.Forget(path)
	r.observer.DeviceLost(path, err)
}

// Reload re-reads the active profile; on failure the current one stays in effect.
func (r *Runtime) Reload() error {
	return r.resolver.Reload()
}

// Stop ends the read loop and releases every grabbed device exactly once.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		r.mux.Stop()
		if r.running.Load() {
			<-r.listenDone
		}
		paths := r.manager.Grabbed()
		r.manager.ReleaseAll()
		for _, path := range paths {
			r.observer.DeviceReleased(path)
		}
		if !r.mux.Wait(readerExitTimeout) {
			r.logger.Warn("Device readers still running after release")
		}
	})
}

// Grabbed returns the paths currently held.
func (r *Runtime) Grabbed() []string {
	return r.manager.Grabbed()
}

type nopObserver struct{}

func (nopObserver) DeviceGrabbed(DeviceInfo)                           {}
func (nopObserver) DeviceReleased(string)                              {}
func (nopObserver) DeviceLost(string, error)                           {}
func (nopObserver) KeyEvent(keymap.KeyEvent, *keymap.ActionDescriptor) {}
