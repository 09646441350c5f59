package linuxinput

import (
	"fmt"
	"strings"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// UinputKeySender injects key presses through a virtual keyboard. The virtual device is
// named InjectorName so scans never offer it back as a source.
type UinputKeySender struct {
	mu     sync.Mutex
	dev    eventWriter
	settle time.Duration
}

func NewUinputKeySender() (*UinputKeySender, error) {
	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	dev, err := evdev.CreateDevice(InjectorName, id, injectorCapabilities())
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	return &UinputKeySender{dev: dev, settle: 2 * time.Millisecond}, nil
}

// keyMax mirrors KEY_MAX from linux/input-event-codes.h.
const keyMax evdev.EvCode = 0x2ff

func injectorCapabilities() map[evdev.EvType][]evdev.EvCode {
	keys := make(map[evdev.EvCode]struct{})
	for name, code := range evdev.KEYFromString {
		if strings.HasPrefix(name, "KEY_") && code > 0 && code < keyMax {
			keys[code] = struct{}{}
		}
	}
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: sortedCodes(keys),
	}
}

// SendChord presses every key of the chord in order and releases them in reverse.
func (s *UinputKeySender) SendChord(chord string) error {
	codes, err := ParseChord(chord)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range codes {
		if err := s.key(code, 1); err != nil {
			return err
		}
	}
	for i := len(codes) - 1; i >= 0; i-- {
		if err := s.key(codes[i], 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *UinputKeySender) TypeText(text string) error {
	keys, err := TextToKeys(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift := uint16(evdev.KEY_LEFTSHIFT)
	for _, k := range keys {
		if k.Shift {
			if err := s.key(shift, 1); err != nil {
				return err
			}
		}
		if err := s.key(k.Code, 1); err != nil {
			return err
		}
		if err := s.key(k.Code, 0); err != nil {
			return err
		}
		if k.Shift {
			if err := s.key(shift, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *UinputKeySender) key(code uint16, value int32) error {
	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: evdev.EvCode(code), Value: value},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	}
	for i := range events {
		if err := s.dev.WriteOne(&events[i]); err != nil {
			return fmt.Errorf("write %s: %w", FormatCodeName(code), err)
		}
	}
	if s.settle > 0 {
		time.Sleep(s.settle)
	}
	return nil
}

func (s *UinputKeySender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	return err
}
