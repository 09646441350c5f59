package linuxinput

import (
	"fmt"
	"strings"
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

type recordingWriter struct {
	events []evdev.InputEvent
	closed bool
}

func (w *recordingWriter) WriteOne(event *evdev.InputEvent) error {
	w.events = append(w.events, *event)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func (w *recordingWriter) keyTrace() string {
	var parts []string
	for _, ev := range w.events {
		if ev.Type != evdev.EV_KEY {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", FormatCodeName(uint16(ev.Code)), ev.Value))
	}
	return strings.Join(parts, " ")
}

func TestSendChordPressesInOrderAndReleasesInReverse(t *testing.T) {
	w := &recordingWriter{}
	s := &UinputKeySender{dev: w}

	if err := s.SendChord("ctrl+c"); err != nil {
		t.Fatalf("SendChord() error = %v", err)
	}
	want := "KEY_LEFTCTRL=1 KEY_C=1 KEY_C=0 KEY_LEFTCTRL=0"
	if got := w.keyTrace(); got != want {
		t.Fatalf("key trace = %q, want %q", got, want)
	}
	if len(w.events) != 8 || w.events[1].Type != evdev.EV_SYN {
		t.Fatalf("every key event must be followed by SYN_REPORT, got %d events", len(w.events))
	}
}

func TestTypeTextWrapsShiftedKeys(t *testing.T) {
	w := &recordingWriter{}
	s := &UinputKeySender{dev: w}

	if err := s.TypeText("aB"); err != nil {
		t.Fatalf("TypeText() error = %v", err)
	}
	want := "KEY_A=1 KEY_A=0 KEY_LEFTSHIFT=1 KEY_B=1 KEY_B=0 KEY_LEFTSHIFT=0"
	if got := w.keyTrace(); got != want {
		t.Fatalf("key trace = %q, want %q", got, want)
	}

	if err := s.Close(); err != nil || !w.closed {
		t.Fatalf("Close() error = %v closed=%v", err, w.closed)
	}
}
