// Package trace records the structured per-event trace: key events, dispatch outcomes and
// device lifecycle changes, one JSON record each.
package trace

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// Publisher receives every record as JSON. Publish must not block the caller.
type Publisher interface {
	Publish(payload []byte) error
}

// Record is one trace entry. Fields that do not apply to an event are omitted.
type Record struct {
	Session    string    `json:"session"`
	Time       time.Time `json:"time"`
	Event      string    `json:"event"`
	Device     string    `json:"device,omitempty"`
	Name       string    `json:"name,omitempty"`
	Key        string    `json:"key,omitempty"`
	Transition string    `json:"transition,omitempty"`
	Seq        uint64    `json:"seq,omitempty"`
	JobID      string    `json:"job_id,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Action     string    `json:"action,omitempty"`
	Success    *bool     `json:"success,omitempty"`
	Via        string    `json:"via,omitempty"`
	DurationMS float64   `json:"duration_ms,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Event names.
const (
	EventDeviceGrabbed  = "device_grabbed"
	EventDeviceReleased = "device_released"
	EventDeviceLost     = "device_lost"
	EventKey            = "key_event"
	EventJobQueued      = "job_queued"
	EventJobDropped     = "job_dropped"
	EventJobDone        = "job_done"
)

// Recorder implements linuxinput.Observer and dispatch.ResultObserver.
type Recorder struct {
	logger  *slog.Logger
	session string
	now     func() time.Time

	mu  sync.Mutex
	pub Publisher
}

var (
	_ linuxinput.Observer     = (*Recorder)(nil)
	_ dispatch.ResultObserver = (*Recorder)(nil)
)

func NewRecorder(logger *slog.Logger) *Recorder {
	session := uuid.NewString()
	return &Recorder{
		logger:  logger.With("session", session),
		session: session,
		now:     time.Now,
	}
}

// Mirror sends every subsequent record to pub as well.
func (r *Recorder) Mirror(pub Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pub = pub
}

func (r *Recorder) Session() string {
	return r.session
}

func (r *Recorder) DeviceGrabbed(info linuxinput.DeviceInfo) {
	r.emit(slog.LevelInfo, Record{Event: EventDeviceGrabbed, Device: info.Path, Name: info.Name})
}

func (r *Recorder) DeviceReleased(path string) {
	r.emit(slog.LevelInfo, Record{Event: EventDeviceReleased, Device: path})
}

func (r *Recorder) DeviceLost(path string, err error) {
	rec := Record{Event: EventDeviceLost, Device: path}
	if err != nil {
		rec.Error = err.Error()
	}
	r.emit(slog.LevelWarn, rec)
}

func (r *Recorder) KeyEvent(ev keymap.KeyEvent, action *keymap.ActionDescriptor) {
	rec := Record{
		Event:      EventKey,
		Device:     ev.Device,
		Key:        ev.Name,
		Transition: ev.Transition.String(),
		Seq:        ev.Seq,
	}
	if action != nil {
		rec.Key = action.Key
		rec.Kind = string(action.Kind)
		rec.Action = action.Action
	}
	r.emit(slog.LevelDebug, rec)
}

func (r *Recorder) JobQueued(job dispatch.Job) {
	r.emit(slog.LevelDebug, jobRecord(EventJobQueued, job))
}

func (r *Recorder) JobDropped(job dispatch.Job, reason string) {
	rec := jobRecord(EventJobDropped, job)
	rec.Reason = reason
	r.emit(slog.LevelWarn, rec)
}

func (r *Recorder) JobDone(job dispatch.Job, result dispatch.Result) {
	rec := jobRecord(EventJobDone, job)
	ok := result.Success
	rec.Success = &ok
	rec.Via = result.Via
	rec.DurationMS = float64(result.Duration) / float64(time.Millisecond)
	if result.Err != nil {
		rec.Error = result.Err.Error()
	}
	level := slog.LevelInfo
	if !ok {
		level = slog.LevelWarn
	}
	r.emit(level, rec)
}

func jobRecord(event string, job dispatch.Job) Record {
	return Record{
		Event:  event,
		JobID:  job.ID,
		Device: job.Event.Device,
		Key:    job.Action.Key,
		Kind:   string(job.Action.Kind),
		Action: job.Action.Action,
	}
}

func (r *Recorder) emit(level slog.Level, rec Record) {
	rec.Session = r.session
	rec.Time = r.now()

	attrs := []slog.Attr{}
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	add("device", rec.Device)
	add("name", rec.Name)
	add("key", rec.Key)
	add("transition", rec.Transition)
	if rec.Seq != 0 {
		attrs = append(attrs, slog.Uint64("seq", rec.Seq))
	}
	add("job_id", rec.JobID)
	add("kind", rec.Kind)
	add("action", rec.Action)
	if rec.Success != nil {
		attrs = append(attrs, slog.Bool("success", *rec.Success))
		attrs = append(attrs, slog.Float64("duration_ms", rec.DurationMS))
	}
	add("via", rec.Via)
	add("reason", rec.Reason)
	add("error", rec.Error)
	r.logger.LogAttrs(context.Background(), level, rec.Event, attrs...)

	r.mu.Lock()
	pub := r.pub
	r.mu.Unlock()
	if pub == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := pub.Publish(payload); err != nil {
		r.logger.Debug("trace mirror failed", "err", err)
	}
}
