package selection

import (
	"github.com/llehouerou/castwave/internal/progress"
	"github.com/llehouerou/castwave/internal/roster"
)

// LiveLabel replaces the elapsed time for live streams.
const LiveLabel = "LIVE"

// Icon is the glyph shown on the play/pause control.
type Icon int

const (
	IconPlay Icon = iota
	IconPause
)

// Snapshot is everything the presentation layer needs to draw the observed
// device. It is a value; sinks may keep it.
type Snapshot struct {
	Name    string
	Address string
	Title   string

	Playback    roster.Playback
	PlayIcon    Icon
	PlayEnabled bool
	StopEnabled bool
	SeekEnabled bool
	Live        bool

	// Volume is nil while a local volume command's echo window is open, so the
	// control keeps the value the user is dragging.
	Volume *int
	Muted  bool

	ProgressLabel string
	SliderMax     int
	SliderValue   int

	StatusText string
}

// Sink receives render requests for the observed device.
type Sink interface {
	RenderSnapshot(index int, s Snapshot)
	RenderDisabledBaseline()
}

// Sinks fans render requests out to several sinks.
type Sinks []Sink

func (ss Sinks) RenderSnapshot(index int, s Snapshot) {
	for _, sink := range ss {
		sink.RenderSnapshot(index, s)
	}
}

func (ss Sinks) RenderDisabledBaseline() {
	for _, sink := range ss {
		sink.RenderDisabledBaseline()
	}
}

// Build derives a snapshot from a device state.
func Build(s *roster.State, suppressed bool) Snapshot {
	playing := s.HasMedia()
	snap := Snapshot{
		Name:        s.Info.Name,
		Address:     s.Address(),
		Title:       s.Title,
		Playback:    s.Playback,
		PlayIcon:    IconPlay,
		PlayEnabled: !s.Live,
		StopEnabled: true,
		SeekEnabled: playing && !s.Live,
		Live:        s.Live,
		StatusText:  s.StatusText,
		Muted:       s.Muted,
	}
	if s.Playback == roster.Playing {
		snap.PlayIcon = IconPause
	}
	if !suppressed {
		v := s.Volume
		snap.Volume = &v
	}
	if s.Live {
		snap.ProgressLabel = LiveLabel
		return snap
	}
	snap.ProgressLabel = progress.Format(s.Elapsed())
	if d := s.EffectiveDuration(); d != nil {
		snap.SliderMax = *d
	}
	snap.SliderValue = s.Elapsed()
	return snap
}
