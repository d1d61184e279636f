// Package debounce suppresses the volume echo a receiver sends back after a
// locally issued volume command.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultWindow is how long an echo is suppressed after a volume command.
const DefaultWindow = 250 * time.Millisecond

// ExpiredMsg closes the suppression window opened for Generation.
type ExpiredMsg struct {
	Generation int
}

// Gate tracks the single echo window of the observed device.
type Gate struct {
	window     time.Duration
	armed      bool
	generation int
}

// NewGate creates a gate; a non-positive window uses DefaultWindow.
func NewGate(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{window: window}
}

// IsBoundary reports whether percent is a floor or ceiling value. Those are
// definitive and never open a window.
func IsBoundary(percent int) bool {
	return percent <= 0 || percent >= 100
}

// Admit is called for every volume command before it is sent. The command is
// always sent; Admit returns the expiry command when this call opened a window,
// nil otherwise. Commands inside an open window do not re-arm it.
func (g *Gate) Admit(percent int) tea.Cmd {
	if IsBoundary(percent) || g.armed {
		return nil
	}
	g.armed = true
	g.generation++
	return expireCmd(g.window, g.generation)
}

// Expire closes the window if gen is the one currently open.
func (g *Gate) Expire(gen int) bool {
	if !g.armed || gen != g.generation {
		return false
	}
	g.armed = false
	return true
}

// Disarm closes any open window immediately; its pending expiry becomes stale.
func (g *Gate) Disarm() {
	if !g.armed {
		return
	}
	g.armed = false
	g.generation++
}

// Suppressed reports whether an echo window is open.
func (g *Gate) Suppressed() bool { return g.armed }

// Window returns the suppression duration.
func (g *Gate) Window() time.Duration { return g.window }

func expireCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ExpiredMsg{Generation: gen}
	})
}
