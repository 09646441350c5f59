package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

const (
	DefaultWorkers        = 4
	DefaultQueueSize      = 64
	DefaultCommandTimeout = 10 * time.Second
)

// Performer executes a single action. *Executor implements it.
type Performer interface {
	Execute(ctx context.Context, action keymap.ActionDescriptor) Result
}

// Job is one queued action together with the key event that triggered it.
type Job struct {
	ID       string
	Action   keymap.ActionDescriptor
	Event    keymap.KeyEvent
	Enqueued time.Time
}

// ResultObserver is notified after every job. Implementations must be safe for
// concurrent use; they are called from worker goroutines.
type ResultObserver interface {
	JobQueued(job Job)
	JobDropped(job Job, reason string)
	JobDone(job Job, result Result)
}

type Config struct {
	Workers        int
	QueueSize      int
	CommandTimeout time.Duration
}

// Dispatcher runs actions off the read loop on a bounded worker pool.
type Dispatcher struct {
	performer Performer
	cfg       Config
	observer  ResultObserver
	logger    keymap.Logger

	queue  chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(performer Performer, cfg Config, observer ResultObserver, logger keymap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		performer: performer,
		cfg:       cfg,
		observer:  observer,
		logger:    logger,
		queue:     make(chan Job, cfg.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Submit enqueues the action without blocking. It returns false when the queue is
// full or the dispatcher is closed.
func (d *Dispatcher) Submit(action keymap.ActionDescriptor, ev keymap.KeyEvent) bool {
	job := Job{
		ID:       uuid.NewString(),
		Action:   action,
		Event:    ev,
		Enqueued: time.Now(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.observer.JobDropped(job, "closed")
		return false
	}

	select {
	case d.queue <- job:
		d.observer.JobQueued(job)
		return true
	default:
		d.logger.Warn("Dispatch queue full; dropping action", "key", action.Key, "action", action.String(), "queue_size", d.cfg.QueueSize)
		d.observer.JobDropped(job, "queue_full")
		return false
	}
}

// Close stops intake, cancels in-flight work and waits for the workers to exit.
// Jobs still queued are dropped. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.queue {
		if d.ctx.Err() != nil {
			d.observer.JobDropped(job, "shutdown")
			continue
		}
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.CommandTimeout)
	defer cancel()

	result := d.performer.Execute(ctx, job.Action)
	d.observer.JobDone(job, result)
}

type nopObserver struct{}

func (nopObserver) JobQueued(Job)          {}
func (nopObserver) JobDropped(Job, string) {}
func (nopObserver) JobDone(Job, Result)    {}
