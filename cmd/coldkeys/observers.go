package main

import (
	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// pipelineObserver is what the trace recorder and the metrics collector both implement.
type pipelineObserver interface {
	linuxinput.Observer
	dispatch.ResultObserver
}

// fanout forwards every notification to each observer in order.
type fanout []pipelineObserver

func (f fanout) DeviceGrabbed(info linuxinput.DeviceInfo) {
	for _, o := range f {
		o.DeviceGrabbed(info)
	}
}

func (f fanout) DeviceReleased(path string) {
	for _, o := range f {
		o.DeviceReleased(path)
	}
}

func (f fanout) DeviceLost(path string, err error) {
	for _, o := range f {
		o.DeviceLost(path, err)
	}
}

func (f fanout) KeyEvent(ev keymap.KeyEvent, action *keymap.ActionDescriptor) {
	for _, o := range f {
		o.KeyEvent(ev, action)
	}
}

func (f fanout) JobQueued(job dispatch.Job) {
	for _, o := range f {
		o.JobQueued(job)
	}
}

func (f fanout) JobDropped(job dispatch.Job, reason string) {
	for _, o := range f {
		o.JobDropped(job, reason)
	}
}

func (f fanout) JobDone(job dispatch.Job, result dispatch.Result) {
	for _, o := range f {
		o.JobDone(job, result)
	}
}
