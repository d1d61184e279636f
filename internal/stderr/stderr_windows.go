//go:build windows

// Package stderr leaves stderr alone on Windows, where the console is not
// shared with fd-level writers the same way.
package stderr

import (
	"os"

	"github.com/rs/zerolog"
)

// Capture is never active on Windows.
type Capture struct {
	lines chan string
}

// Start returns a nil capture; nothing is redirected.
func Start(zerolog.Logger) (*Capture, error) {
	return nil, nil //nolint:nilnil // nil capture is a valid no-op
}

func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

func (c *Capture) Restore() {}
