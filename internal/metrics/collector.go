// Package metrics exposes daemon counters to Prometheus and serves a small status API.
package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// Collector counts pipeline activity. It implements linuxinput.Observer and
// dispatch.ResultObserver.
type Collector struct {
	registry *prometheus.Registry

	keyEvents    *prometheus.CounterVec
	actions      *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	grabbedGauge prometheus.Gauge
	lost         prometheus.Counter

	mu      sync.Mutex
	devices map[string]linuxinput.DeviceInfo
}

var (
	_ linuxinput.Observer     = (*Collector)(nil)
	_ dispatch.ResultObserver = (*Collector)(nil)
)

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		keyEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coldkeys_key_events_total",
				Help: "Key events read from grabbed devices by transition and whether a mapping matched.",
			},
			[]string{"transition", "mapped"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coldkeys_actions_total",
				Help: "Executed actions by kind and result.",
			},
			[]string{"kind", "result"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coldkeys_actions_dropped_total",
				Help: "Actions dropped before execution by reason.",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coldkeys_action_duration_seconds",
				Help:    "Action execution time by kind.",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		grabbedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coldkeys_grabbed_devices",
			Help: "Devices currently held exclusively.",
		}),
		lost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coldkeys_devices_lost_total",
			Help: "Grabbed devices that disappeared or failed while in use.",
		}),
		devices: make(map[string]linuxinput.DeviceInfo),
	}
	c.registry.MustRegister(c.keyEvents, c.actions, c.dropped, c.duration, c.grabbedGauge, c.lost)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) DeviceGrabbed(info linuxinput.DeviceInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices[info.Path] = info
	c.grabbedGauge.Set(float64(len(c.devices)))
}

func (c *Collector) DeviceReleased(path string) {
	c.forget(path)
}

func (c *Collector) DeviceLost(path string, _ error) {
	c.lost.Inc()
	c.forget(path)
}

func (c *Collector) forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.devices, path)
	c.grabbedGauge.Set(float64(len(c.devices)))
}

func (c *Collector) KeyEvent(ev keymap.KeyEvent, action *keymap.ActionDescriptor) {
	mapped := "false"
	if action != nil {
		mapped = "true"
	}
	c.keyEvents.WithLabelValues(ev.Transition.String(), mapped).Inc()
}

func (c *Collector) JobQueued(dispatch.Job) {}

func (c *Collector) JobDropped(_ dispatch.Job, reason string) {
	c.dropped.WithLabelValues(reason).Inc()
}

func (c *Collector) JobDone(job dispatch.Job, result dispatch.Result) {
	kind := string(job.Action.Kind)
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	c.actions.WithLabelValues(kind, outcome).Inc()
	c.duration.WithLabelValues(kind).Observe(result.Duration.Seconds())
}

// Devices returns the currently grabbed devices ordered by path.
func (c *Collector) Devices() []linuxinput.DeviceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]linuxinput.DeviceInfo, 0, len(c.devices))
	for _, info := range c.devices {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
