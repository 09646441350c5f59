package keymap

import (
	"sync"
	"sync/atomic"
)

// ProfileSource loads profiles by name. *Store implements it.
type ProfileSource interface {
	Load(name string) (*Profile, error)
}

// Resolver maps key events to actions from the active profile. The active profile is
// swapped wholesale; a failed load leaves the previous one in effect.
type Resolver struct {
	source ProfileSource
	logger Logger

	active     atomic.Pointer[Profile]
	activeName atomic.Value

	mu   sync.Mutex
	held map[string]map[uint16]Modifiers
}

func NewResolver(source ProfileSource, logger Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger,
		held:   make(map[string]map[uint16]Modifiers),
	}
}

// Load reads, validates and activates the named profile.
func (r *Resolver) Load(name string) error {
	profile, err := r.source.Load(name)
	if err != nil {
		r.logger.Error("Failed to load profile; keeping current profile", "profile", name, "err", err)
		return err
	}
	r.Activate(name, profile)
	return nil
}

// Reload re-reads the currently active profile by name.
func (r *Resolver) Reload() error {
	name, _ := r.activeName.Load().(string)
	if name == "" {
		name = DefaultProfileName
	}
	return r.Load(name)
}

func (r *Resolver) Activate(name string, profile *Profile) {
	r.active.Store(profile)
	r.activeName.Store(name)
	r.logger.Info("Loaded profile", "profile", name, "name", profile.Name, "version", profile.Version, "mappings", profile.Len())
}

func (r *Resolver) Active() *Profile {
	return r.active.Load()
}

// Resolve returns the action for a key-down event. Up and repeat transitions
// only update modifier tracking and never produce an action.
func (r *Resolver) Resolve(ev KeyEvent) (ActionDescriptor, bool) {
	mods := r.track(ev)
	if ev.Transition != TransitionDown {
		r.logger.Debug("Key transition", "device", ev.Device, "key", ev.Name, "transition", ev.Transition.String())
		return ActionDescriptor{}, false
	}

	action, ok := ResolveEvent(r.active.Load(), ev, mods)
	if !ok {
		r.logger.Debug("No mapping for key", "device", ev.Device, "identity", Identity(mods, ev.Name))
	}
	return action, ok
}

// Forget drops modifier state for a device that went away.
func (r *Resolver) Forget(device string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, device)
}

// track updates per-device modifier state and returns the modifiers held before ev.
func (r *Resolver) track(ev KeyEvent) Modifiers {
	r.mu.Lock()
	defer r.mu.Unlock()

	held := r.held[ev.Device]
	var mods Modifiers
	for code, mod := range held {
		if code != ev.Code {
			mods |= mod
		}
	}

	mod, isModifier := ModifierForKey(ev.Name)
	if !isModifier {
		return mods
	}
	switch ev.Transition {
	case TransitionDown:
		if held == nil {
			held = make(map[uint16]Modifiers)
			r.held[ev.Device] = held
		}
		held[ev.Code] = mod
	case TransitionUp:
		delete(held, ev.Code)
	}
	return mods
}

// ResolveEvent looks up the action for ev in profile given the modifiers held at the time.
// Only down transitions resolve.
func ResolveEvent(profile *Profile, ev KeyEvent, mods Modifiers) (ActionDescriptor, bool) {
	if profile == nil || ev.Transition != TransitionDown || ev.Name == "" {
		return ActionDescriptor{}, false
	}
	return profile.Lookup(Identity(mods, ev.Name))
}
