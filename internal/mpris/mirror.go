package mpris

import (
	"errors"
	"sync"

	"github.com/llehouerou/castwave/internal/selection"
)

// ErrUnsupported is returned by New where there is no session bus to export on.
var ErrUnsupported = errors.New("mpris: no D-Bus session on this platform")

// Action is a media-key request coming from the desktop.
type Action int

const (
	ActionPlayPause Action = iota
	ActionPlay
	ActionPause
	ActionStop
	ActionSkip
	ActionSeek        // relative, Seconds
	ActionSetPosition // absolute, Seconds
	ActionSetVolume   // Volume percent
	ActionOpen        // cast URL
)

// IntentMsg carries a desktop request into the update loop.
type IntentMsg struct {
	Action  Action
	Seconds int
	Volume  int
	URL     string
}

// Mirror keeps a copy of the last rendered snapshot for D-Bus property reads,
// which happen on the D-Bus goroutine.
type Mirror struct {
	mu     sync.RWMutex
	snap   selection.Snapshot
	active bool
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) RenderSnapshot(_ int, s selection.Snapshot) {
	m.mu.Lock()
	m.snap = s
	m.active = true
	m.mu.Unlock()
}

func (m *Mirror) RenderDisabledBaseline() {
	m.mu.Lock()
	m.snap = selection.Snapshot{}
	m.active = false
	m.mu.Unlock()
}

// Current returns the mirrored snapshot and whether a receiver is selected.
func (m *Mirror) Current() (selection.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, m.active
}

var _ selection.Sink = (*Mirror)(nil)
