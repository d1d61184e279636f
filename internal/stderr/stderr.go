//go:build !windows

// Package stderr captures output written directly to file descriptor 2
// (the std log package used by the mDNS resolver, runtime warnings, cgo)
// so it cannot corrupt the TUI layout. Captured lines go to the log file
// and to Lines for the status line.
package stderr

import (
	"os"
	"syscall"

	"github.com/rs/zerolog"
)

// Capture redirects fd 2 into a pipe until Restore.
type Capture struct {
	orig  int
	r, w  *os.File
	lines chan string
}

// Start redirects stderr. Call it before the TUI takes the terminal; on
// error the program runs without capture.
func Start(log zerolog.Logger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	fd := int(os.Stderr.Fd())
	orig, err := syscall.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), fd); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, lines: make(chan string, lineBuffer)}
	go func() {
		forward(r, log, c.lines)
		close(c.lines)
	}()
	return c, nil
}

// WriteOriginal writes to the terminal's stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	if c == nil {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Restore puts the original stderr back. Lines is closed once the
// remaining output is drained.
func (c *Capture) Restore() {
	if c == nil {
		return
	}
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.w.Close()
}
