//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
)

// KeySender injects key presses into the X server through the XTEST extension. It is the
// fallback when no uinput device can be created.
type KeySender struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window

	mu       sync.Mutex
	keycodes map[uint16]xproto.Keycode
}

func NewKeySender() (*KeySender, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	keybind.Initialize(xu)

	return &KeySender{
		xu:       xu,
		conn:     conn,
		rootWin:  xu.RootWin(),
		keycodes: make(map[uint16]xproto.Keycode),
	}, nil
}

func (s *KeySender) SendChord(chord string) error {
	codes, err := linuxinput.ParseChord(chord)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]xproto.Keycode, 0, len(codes))
	for _, code := range codes {
		key, err := s.resolveLocked(code)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}

	for _, key := range keys {
		if err := s.fakeKey(xproto.KeyPress, key); err != nil {
			return err
		}
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if err := s.fakeKey(xproto.KeyRelease, keys[i]); err != nil {
			return err
		}
	}
	s.conn.Sync()
	return nil
}

func (s *KeySender) TypeText(text string) error {
	typed, err := linuxinput.TextToKeys(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.resolveLocked(shiftCode)
	if err != nil {
		return err
	}
	for _, k := range typed {
		key, err := s.resolveLocked(k.Code)
		if err != nil {
			return err
		}
		if k.Shift {
			if err := s.fakeKey(xproto.KeyPress, shift); err != nil {
				return err
			}
		}
		if err := s.fakeKey(xproto.KeyPress, key); err != nil {
			return err
		}
		if err := s.fakeKey(xproto.KeyRelease, key); err != nil {
			return err
		}
		if k.Shift {
			if err := s.fakeKey(xproto.KeyRelease, shift); err != nil {
				return err
			}
		}
	}
	s.conn.Sync()
	return nil
}

func (s *KeySender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

func (s *KeySender) fakeKey(eventType byte, key xproto.Keycode) error {
	if s.conn == nil {
		return fmt.Errorf("x11 key sender is closed")
	}
	return xtest.FakeInputChecked(
		s.conn,
		eventType,
		byte(key),
		xproto.TimeCurrentTime,
		s.rootWin,
		0,
		0,
		0,
	).Check()
}

func (s *KeySender) resolveLocked(code uint16) (xproto.Keycode, error) {
	if key, ok := s.keycodes[code]; ok {
		return key, nil
	}

	keysym, ok := keysymForCode(code)
	if !ok {
		return 0, fmt.Errorf("unsupported X11 key code %s", linuxinput.FormatCodeName(code))
	}
	keycodes := keybind.StrToKeycodes(s.xu, keysym)
	if len(keycodes) == 0 {
		return 0, fmt.Errorf("failed to resolve X11 key %q", keysym)
	}
	sort.Slice(keycodes, func(i, j int) bool { return keycodes[i] < keycodes[j] })

	s.keycodes[code] = keycodes[0]
	return keycodes[0], nil
}
