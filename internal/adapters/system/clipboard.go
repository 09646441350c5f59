package system

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
)

// Clipboard talks to the desktop clipboard through xclip, xsel or wl-clipboard.
type Clipboard struct{}

func (Clipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("%w: no clipboard utility installed", dispatch.ErrUnavailable)
	}
	return clipboard.ReadAll()
}

func (Clipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard utility installed", dispatch.ErrUnavailable)
	}
	return clipboard.WriteAll(text)
}
