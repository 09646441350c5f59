//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/adapters/x11input"
	"github.com/Mr-Niloy/ColdKeys/internal/config"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

func scanDevices(logger keymap.Logger) ([]linuxinput.ScannedDevice, error) {
	return linuxinput.NewScanner(logger).Scan()
}

func captureKey(ctx context.Context, devicePath string, timeout time.Duration, logger keymap.Logger) (string, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	captured, err := linuxinput.CaptureNextKey(ctx, devicePath, timeout, logger)
	if err != nil {
		return "", "", err
	}
	return captured.Identity, captured.Event.Device, nil
}

// newKeySender creates the synthetic input backend. auto prefers uinput and falls back
// to XTEST when an X11 display is reachable; none disables synthetic input.
func newKeySender(choice string, logger keymap.Logger) (dispatch.KeySender, io.Closer, error) {
	switch resolveKeySender(choice) {
	case config.KeySenderNone:
		logger.Info("Synthetic input disabled")
		return nil, closeFunc(func() {}), nil
	case config.KeySenderX11:
		sender, err := x11input.NewKeySender()
		if err != nil {
			return nil, nil, fmt.Errorf("x11 key sender: %w", err)
		}
		logger.Info("Key sender", "backend", "x11")
		return sender, sender, nil
	case config.KeySenderUinput:
		sender, err := linuxinput.NewUinputKeySender()
		if err != nil {
			return nil, nil, fmt.Errorf("uinput key sender: %w", err)
		}
		logger.Info("Key sender", "backend", "uinput")
		return sender, sender, nil
	}

	sender, err := linuxinput.NewUinputKeySender()
	if err == nil {
		logger.Info("Key sender", "backend", "uinput")
		return sender, sender, nil
	}
	logger.Warn("uinput unavailable", "err", err)

	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		x11, x11Err := x11input.NewKeySender()
		if x11Err == nil {
			logger.Info("Key sender", "backend", "x11")
			return x11, x11, nil
		}
		err = errors.Join(err, x11Err)
	}
	logger.Warn("No key sender available; text, media key and key_sequence actions will fail", "err", err)
	return nil, closeFunc(func() {}), nil
}

func resolveKeySender(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		return config.KeySenderAuto
	}
	if choice != config.KeySenderAuto {
		return choice
	}

	// X11 session without /dev/uinput: XTEST is the only backend left.
	if strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE"))) == "x11" {
		if _, err := os.Stat("/dev/uinput"); err != nil {
			return config.KeySenderX11
		}
	}
	return config.KeySenderAuto
}

func permissionDeniedHint() string {
	return "Permission denied opening input devices. Add your user to the 'input' group (and grant access to /dev/uinput) or run as root."
}
