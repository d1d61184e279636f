// Package progress holds the per-device local progress clock that fills the
// gaps between authoritative position updates.
package progress

import "fmt"

// Clock counts elapsed seconds between authoritative updates.
//
// Each Start opens a new generation; ticks scheduled for an older generation
// are rejected, which is how a stopped clock cancels its pending tick.
type Clock struct {
	elapsed    int
	running    bool
	generation int
}

// Start arms the clock. It reports the generation the caller should schedule
// ticks for, and false when the clock was already running (its tick chain is
// still alive and must not be duplicated).
func (c *Clock) Start() (int, bool) {
	if c.running {
		return c.generation, false
	}
	c.running = true
	c.generation++
	return c.generation, true
}

// Stop halts the clock. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.generation++
}

// Tick advances the clock by one second if gen is the live generation.
func (c *Clock) Tick(gen int) bool {
	if !c.running || gen != c.generation {
		return false
	}
	c.elapsed++
	return true
}

// Resync replaces the local estimate with an authoritative position.
func (c *Clock) Resync(seconds int) {
	c.elapsed = max(seconds, 0)
}

// Reset stops the clock and zeroes it.
func (c *Clock) Reset() {
	c.Stop()
	c.elapsed = 0
}

// Elapsed returns the current position in whole seconds.
func (c *Clock) Elapsed() int { return c.elapsed }

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool { return c.running }

// Generation returns the live tick generation.
func (c *Clock) Generation() int { return c.generation }

// Format renders seconds as hh:mm:ss.
func Format(seconds int) string {
	seconds = max(seconds, 0)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
