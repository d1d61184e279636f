// Package roster owns the ordered set of known receivers and their mutable
// playback records.
package roster

import (
	"fmt"
	"time"

	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/progress"
)

// Slot is a device's place in the roster: attached at a dense index, or
// detached. The zero value is Detached.
type Slot struct {
	index    int
	attached bool
}

// Attached returns a slot at index i.
func Attached(i int) Slot { return Slot{index: i, attached: true} }

// Detached returns the slot of a device that left the roster.
func Detached() Slot { return Slot{} }

// Index returns the roster index and whether the device is attached.
func (s Slot) Index() (int, bool) {
	return s.index, s.attached
}

func (s Slot) String() string {
	if !s.attached {
		return "detached"
	}
	return fmt.Sprintf("attached(%d)", s.index)
}

// Playback is the playback state the core tracks for a device.
type Playback int

const (
	Idle Playback = iota
	Playing
	Paused
)

// String returns the playback name.
func (p Playback) String() string {
	switch p {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Idle"
	}
}

// State is the authoritative record for one receiver. It is only touched from
// the application loop.
type State struct {
	Info   device.Info
	Handle device.Handle
	Slot   Slot

	Playback     Playback
	Live         bool
	SupportsSeek bool
	Duration     *int // seconds; nil when unknown
	Clock        progress.Clock
	Volume       int // percent
	Muted        bool
	StatusText   string
	Title        string

	VolumeEchoSuppressed bool

	AttachedAt time.Time

	listener *device.Subscription
}

// Address returns the device's stable key.
func (s *State) Address() string { return s.Info.Address }

// Elapsed returns the position in seconds.
func (s *State) Elapsed() int { return s.Clock.Elapsed() }

// IsAttached reports whether the device holds a roster index.
func (s *State) IsAttached() bool {
	_, ok := s.Slot.Index()
	return ok
}

// HasMedia reports whether media is loaded (playing or paused).
func (s *State) HasMedia() bool {
	return s.Playback == Playing || s.Playback == Paused
}

// EffectiveDuration returns the duration, or nil for live streams where it has
// no meaning.
func (s *State) EffectiveDuration() *int {
	if s.Live {
		return nil
	}
	return s.Duration
}

// Listener returns the status subscription registered for this state.
func (s *State) Listener() *device.Subscription { return s.listener }

// Listen registers the status subscription events for this state arrive on.
func (s *State) Listen(sub *device.Subscription) { s.listener = sub }

// ResetPlayback returns the state to idle with a stopped, zeroed clock.
func (s *State) ResetPlayback() {
	s.Clock.Reset()
	s.Playback = Idle
	s.Live = false
}
