package keymap

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transition is the state change reported for a single key code.
type Transition uint8

const (
	TransitionUp Transition = iota
	TransitionDown
	TransitionRepeat
)

// TransitionFromValue maps an EV_KEY value (0, 1, 2) to a Transition.
func TransitionFromValue(value int32) (Transition, bool) {
	switch value {
	case 0:
		return TransitionUp, true
	case 1:
		return TransitionDown, true
	case 2:
		return TransitionRepeat, true
	default:
		return 0, false
	}
}

func (t Transition) String() string {
	switch t {
	case TransitionUp:
		return "up"
	case TransitionDown:
		return "down"
	case TransitionRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("transition(%d)", uint8(t))
	}
}

// KeyEvent is one physical key transition read from a grabbed device.
type KeyEvent struct {
	Device     string
	Code       uint16
	Name       string
	Transition Transition
	Time       time.Time
	Seq        uint64
}

// ActionKind enumerates the kinds of side effect a mapping can trigger.
type ActionKind string

const (
	KindVolume      ActionKind = "volume"
	KindMedia       ActionKind = "media"
	KindApplication ActionKind = "application"
	KindCommand     ActionKind = "command"
	KindText        ActionKind = "text"
	KindKeySequence ActionKind = "key_sequence"
	KindURL         ActionKind = "url"
	KindSystem      ActionKind = "system"
)

// Kinds lists every recognized action kind in schema order.
var Kinds = []ActionKind{
	KindVolume,
	KindMedia,
	KindApplication,
	KindCommand,
	KindText,
	KindKeySequence,
	KindURL,
	KindSystem,
}

func (k ActionKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ActionDescriptor is a declarative, load-time-immutable action bound to a key identity.
type ActionDescriptor struct {
	Key         string
	Kind        ActionKind
	Action      string
	Value       any
	Modifiers   []string
	Description string
}

// StringValue returns Value as a trimmed string and whether one was set.
func (a ActionDescriptor) StringValue() (string, bool) {
	switch v := a.Value.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// IntValue returns Value as an integer, falling back to def when unset or not numeric.
func (a ActionDescriptor) IntValue(def int) int {
	switch v := a.Value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func (a ActionDescriptor) String() string {
	if a.Description != "" {
		return fmt.Sprintf("%s:%s (%s)", a.Kind, a.Action, a.Description)
	}
	return fmt.Sprintf("%s:%s", a.Kind, a.Action)
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
