package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

const (
	DefaultPollInterval = 10 * time.Millisecond
	readChunk           = 64
)

var ErrReadFailure = errors.New("device read failed")

// Source is an event source. Grabbed devices satisfy it. ReadSlice may block until
// events arrive; closing the source must make a blocked ReadSlice return.
type Source interface {
	Path() string
	ReadSlice(count int) ([]evdev.InputEvent, error)
}

type MultiplexerConfig struct {
	// PollInterval is the back-off after a source reports would-block.
	PollInterval time.Duration
}

type readBatch struct {
	src    Source
	events []evdev.InputEvent
	err    error
}

// Multiplexer pumps every watched source into one loop, which forwards key events in
// arrival order per source.
type Multiplexer struct {
	cfg    MultiplexerConfig
	logger keymap.Logger
	onLost func(path string, err error)

	seq uint64

	batches   chan readBatch
	readersWG sync.WaitGroup
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewMultiplexer(cfg MultiplexerConfig, logger keymap.Logger) *Multiplexer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Multiplexer{
		cfg:     cfg,
		logger:  logger,
		batches: make(chan readBatch),
		stopCh:  make(chan struct{}),
	}
}

// OnLost registers a callback run on the listen goroutine when a source fails and is
// removed. The error wraps ErrReadFailure.
func (m *Multiplexer) OnLost(fn func(path string, err error)) {
	m.onLost = fn
}

// Listen blocks until Stop is called or every source has been lost. Only EV_KEY events
// reach onEvent, always from the calling goroutine. Readers still blocked when Listen
// returns exit once their source is closed.
func (m *Multiplexer) Listen(sources []Source, onEvent func(keymap.KeyEvent)) error {
	if m.stopped() {
		return nil
	}
	for _, src := range sources {
		m.readersWG.Add(1)
		go m.readLoop(src)
	}

	live := len(sources)
	for live > 0 {
		var batch readBatch
		select {
		case <-m.stopCh:
			return nil
		case batch = <-m.batches:
		}

		if batch.err != nil {
			live--
			m.logger.Warn("Lost input device", "path", batch.src.Path(), "err", batch.err)
			if m.onLost != nil {
				m.onLost(batch.src.Path(), batch.err)
			}
			continue
		}
		for i := range batch.events {
			if ev, ok := m.keyEvent(batch.src.Path(), &batch.events[i]); ok {
				onEvent(ev)
			}
			if m.stopped() {
				return nil
			}
		}
	}
	m.logger.Warn("No input devices left to watch")
	return nil
}

func (m *Multiplexer) readLoop(src Source) {
	defer m.readersWG.Done()

	for {
		events, err := src.ReadSlice(readChunk)
		if m.stopped() {
			return
		}
		if err != nil {
			if isWouldBlockError(err) {
				if !m.sleepWithStop(m.cfg.PollInterval) {
					return
				}
				continue
			}
			m.send(readBatch{src: src, err: fmt.Errorf("%w: %s: %v", ErrReadFailure, src.Path(), err)})
			return
		}
		if len(events) == 0 {
			continue
		}
		if !m.send(readBatch{src: src, events: events}) {
			return
		}
	}
}

func (m *Multiplexer) send(batch readBatch) bool {
	select {
	case m.batches <- batch:
		return true
	case <-m.stopCh:
		return false
	}
}

func (m *Multiplexer) keyEvent(path string, raw *evdev.InputEvent) (keymap.KeyEvent, bool) {
	if raw.Type != evdev.EV_KEY {
		return keymap.KeyEvent{}, false
	}
	transition, ok := keymap.TransitionFromValue(raw.Value)
	if !ok {
		return keymap.KeyEvent{}, false
	}
	m.seq++
	code := uint16(raw.Code)
	return keymap.KeyEvent{
		Device:     path,
		Code:       code,
		Name:       FormatCodeName(code),
		Transition: transition,
		Time:       time.Unix(int64(raw.Time.Sec), int64(raw.Time.Usec)*int64(time.Microsecond)),
		Seq:        m.seq,
	}, true
}

// Stop makes Listen return without waiting for any source. Safe from any goroutine.
func (m *Multiplexer) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

// Wait blocks until every reader has exited or the timeout passes. Readers blocked in
// ReadSlice exit only after their source is closed.
func (m *Multiplexer) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		m.readersWG.Wait()
		close(done)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (m *Multiplexer) stopped() bool {
	select {
	case <-m.stopCh:
		return true
	default:
		return false
	}
}

func (m *Multiplexer) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-m.stopCh:
		return false
	case <-timer.C:
		return true
	}
}
