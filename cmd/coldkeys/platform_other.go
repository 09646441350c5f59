//go:build !linux

package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

var errUnsupportedPlatform = errors.New("coldkeys needs Linux evdev input devices")

func scanDevices(keymap.Logger) ([]linuxinput.ScannedDevice, error) {
	return nil, errUnsupportedPlatform
}

func captureKey(context.Context, string, time.Duration, keymap.Logger) (string, string, error) {
	return "", "", errUnsupportedPlatform
}

func newKeySender(string, keymap.Logger) (dispatch.KeySender, io.Closer, error) {
	return nil, nil, errUnsupportedPlatform
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend."
}
