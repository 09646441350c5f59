package keymap

import (
	"errors"
	"fmt"
	"testing"
)

type memorySource map[string]string

func (m memorySource) Load(name string) (*Profile, error) {
	doc, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return Parse([]byte(doc), name)
}

func newTestResolver(t *testing.T, source memorySource, name string) *Resolver {
	t.Helper()
	resolver := NewResolver(source, noopLogger{})
	if err := resolver.Load(name); err != nil {
		t.Fatalf("Load(%q) error = %v", name, err)
	}
	return resolver
}

func keyEvent(device, name string, code uint16, transition Transition) KeyEvent {
	return KeyEvent{Device: device, Code: code, Name: name, Transition: transition}
}

func TestResolveApplicationScenario(t *testing.T) {
	resolver := newTestResolver(t, memorySource{"macro": validProfile}, "macro")

	action, ok := resolver.Resolve(keyEvent("/dev/input/event3", "KEY_A", 30, TransitionDown))
	if !ok {
		t.Fatalf("expected KEY_A down to resolve")
	}
	if action.Kind != KindApplication || action.Action != "launch" {
		t.Fatalf("unexpected action %v", action)
	}
	if value, _ := action.StringValue(); value != "firefox" {
		t.Fatalf("value = %q, want firefox", value)
	}
}

func TestResolveNeverActsOnUpOrRepeat(t *testing.T) {
	resolver := newTestResolver(t, memorySource{"macro": validProfile}, "macro")

	names := map[string]uint16{"KEY_A": 30, "KEY_B": 48, "KEY_C": 46, "KEY_D": 32, "KEY_E": 18, "KEY_Z": 44}
	for _, transition := range []Transition{TransitionUp, TransitionRepeat} {
		for name, code := range names {
			if action, ok := resolver.Resolve(keyEvent("dev", name, code, transition)); ok {
				t.Fatalf("%s %s resolved to %v", name, transition, action)
			}
		}
	}

	profile := resolver.Active()
	for _, identity := range profile.Identities() {
		for _, transition := range []Transition{TransitionUp, TransitionRepeat} {
			ev := KeyEvent{Name: identity, Transition: transition}
			if _, ok := ResolveEvent(profile, ev, 0); ok {
				t.Fatalf("ResolveEvent(%s, %s) returned an action", identity, transition)
			}
		}
	}
}

func TestResolveModifierCombinationIsDistinctEntry(t *testing.T) {
	resolver := newTestResolver(t, memorySource{"macro": validProfile}, "macro")

	if _, ok := resolver.Resolve(keyEvent("dev", "KEY_C", 46, TransitionDown)); ok {
		t.Fatalf("bare KEY_C must not resolve to the CTRL+KEY_C entry")
	}

	resolver.Resolve(keyEvent("dev", "KEY_RIGHTCTRL", 97, TransitionDown))
	action, ok := resolver.Resolve(keyEvent("dev", "KEY_C", 46, TransitionDown))
	if !ok || action.Kind != KindKeySequence {
		t.Fatalf("expected CTRL+KEY_C to resolve, got %v %v", action, ok)
	}

	if _, ok := resolver.Resolve(keyEvent("other", "KEY_C", 46, TransitionDown)); ok {
		t.Fatalf("modifier state must be tracked per device")
	}

	resolver.Resolve(keyEvent("dev", "KEY_RIGHTCTRL", 97, TransitionUp))
	if _, ok := resolver.Resolve(keyEvent("dev", "KEY_C", 46, TransitionDown)); ok {
		t.Fatalf("CTRL released: KEY_C must not resolve")
	}

	resolver.Resolve(keyEvent("dev", "KEY_LEFTSHIFT", 42, TransitionDown))
	resolver.Resolve(keyEvent("dev", "KEY_LEFTALT", 56, TransitionDown))
	action, ok = resolver.Resolve(keyEvent("dev", "KEY_D", 32, TransitionDown))
	if !ok || action.Kind != KindCommand {
		t.Fatalf("expected ALT+SHIFT+KEY_D to resolve, got %v %v", action, ok)
	}

	resolver.Forget("dev")
	if _, ok := resolver.Resolve(keyEvent("dev", "KEY_D", 32, TransitionDown)); ok {
		t.Fatalf("Forget must clear held modifiers")
	}
}

func TestResolveUnmappedKey(t *testing.T) {
	resolver := newTestResolver(t, memorySource{"macro": validProfile}, "macro")
	if action, ok := resolver.Resolve(keyEvent("dev", "KEY_Q", 16, TransitionDown)); ok {
		t.Fatalf("unmapped key resolved to %v", action)
	}
}

func TestResolveWithoutProfile(t *testing.T) {
	resolver := NewResolver(memorySource{}, noopLogger{})
	if _, ok := resolver.Resolve(keyEvent("dev", "KEY_A", 30, TransitionDown)); ok {
		t.Fatalf("resolver without a profile must not resolve")
	}
}

func TestLoadInvalidProfileKeepsPrevious(t *testing.T) {
	source := memorySource{
		"macro":  validProfile,
		"broken": `{"name": "broken", "keymaps": {"KEY_A": {"action": "launch", "value": "firefox"}}}`,
	}
	resolver := newTestResolver(t, source, "macro")
	before := resolver.Active()

	err := resolver.Load("broken")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if resolver.Active() != before {
		t.Fatalf("active profile changed after failed load")
	}

	if err := resolver.Load("missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("Load(missing) error = %v, want ErrProfileNotFound", err)
	}
	if resolver.Active() != before {
		t.Fatalf("active profile changed after missing load")
	}
}

func TestReloadReplacesProfileWholesale(t *testing.T) {
	source := memorySource{"macro": validProfile}
	resolver := newTestResolver(t, source, "macro")

	source["macro"] = `{"name": "Smaller", "keymaps": {"KEY_Q": {"kind": "media", "action": "stop"}}}`
	if err := resolver.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := resolver.Resolve(keyEvent("dev", "KEY_A", 30, TransitionDown)); ok {
		t.Fatalf("old mapping survived reload")
	}
	if _, ok := resolver.Resolve(keyEvent("dev", "KEY_Q", 16, TransitionDown)); !ok {
		t.Fatalf("new mapping missing after reload")
	}
}
