// Package dispatch applies asynchronous device events to the roster.
//
// Every event mutates its device's state whether or not the device is
// observed; only events for the observed device are rendered.
package dispatch

import (
	"errors"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/roster"
	"github.com/llehouerou/castwave/internal/selection"
)

// Dispatcher reconciles device events with the registry.
type Dispatcher struct {
	reg   *roster.Registry
	coord *selection.Coordinator
	log   zerolog.Logger
}

// New creates a dispatcher.
func New(reg *roster.Registry, coord *selection.Coordinator, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{reg: reg, coord: coord, log: log}
}

// Join attaches h to the roster and registers its status listener. Events
// for h may be dispatched once Join returns.
func (d *Dispatcher) Join(h device.Handle) *roster.State {
	info := h.Info()
	prev, replaced := d.reg.LookupByAddress(info.Address)
	replaced = replaced && prev.IsAttached()
	wasSelected := replaced && d.coord.IsSelected(prev)

	s, err := d.reg.Attach(h)
	if err != nil {
		d.log.Warn().Err(err).Str("device", info.Address).Msg("replacing device entry")
	}
	s.Listen(h.SubscribeStatus())

	idx, _ := s.Slot.Index()
	d.log.Info().Str("device", info.Address).Str("name", info.Name).Int("index", idx).Msg("device attached")

	switch {
	case wasSelected:
		d.coord.Select(idx)
	case replaced:
		d.coord.Revalidate()
	}
	d.coord.Attached(s)
	return s
}

// Leave detaches the device at address. A listener that fails to unregister
// is logged; the device leaves the roster regardless.
func (d *Dispatcher) Leave(address string) (*roster.State, bool) {
	s, err := d.reg.Detach(address)
	if errors.Is(err, roster.ErrNotAttached) {
		d.log.Debug().Str("device", address).Msg("leave for unattached device")
		return nil, false
	}
	if err != nil {
		d.log.Warn().Err(err).Str("device", address).Msg("detach")
	}
	d.log.Info().Str("device", address).Msg("device detached")
	d.coord.Revalidate()
	return s, true
}

// Dispatch applies one status event. It returns the command that keeps the
// device's progress clock ticking, if the event started it.
func (d *Dispatcher) Dispatch(msg EventMsg) tea.Cmd {
	s, ok := d.reg.Resolve(msg.Origin)
	if !ok {
		d.log.Debug().Str("slot", slotOf(msg.Origin)).Msg("discarding stale device event")
		return nil
	}

	switch e := msg.Event.(type) {
	case device.MediaStatus:
		return d.media(s, e)
	case device.CastStatus:
		d.cast(s, e)
	case device.ConnectionStatus:
		// Connection changes are driven through Join and Leave.
	}
	return nil
}

// Tick advances a device's progress clock by one second.
func (d *Dispatcher) Tick(msg TickMsg) tea.Cmd {
	s, ok := d.reg.Resolve(msg.Origin)
	if !ok {
		return nil
	}
	if s.Playback != roster.Playing || s.Live {
		s.Clock.Stop()
		return nil
	}
	if !s.Clock.Tick(msg.Generation) {
		return nil
	}
	d.coord.Render(s)
	return TickCmd(s, msg.Generation)
}

func (d *Dispatcher) media(s *roster.State, st device.MediaStatus) tea.Cmd {
	var cmd tea.Cmd
	s.SupportsSeek = st.SupportsSeek

	switch st.PlayerState {
	case device.PlayerPlaying:
		s.Playback = roster.Playing
		s.Clock.Resync(int(st.CurrentTime))
		s.Duration = seconds(st.Duration)
		s.Title = st.Title
		if st.StreamType == device.StreamLive {
			s.Live = true
			s.Clock.Stop()
		} else {
			s.Live = false
			cmd = startClock(s)
		}

	case device.PlayerPaused:
		s.Playback = roster.Paused
		s.Clock.Stop()
		s.Clock.Resync(int(st.CurrentTime))
		if st.Duration != nil {
			s.Duration = seconds(st.Duration)
		}
		s.Title = st.Title

	case device.PlayerBuffering:
		if st.Duration != nil {
			s.Duration = seconds(st.Duration)
		}

	case device.PlayerIdle, device.PlayerUnknown:
		s.ResetPlayback()
		s.Duration = nil
		s.Title = ""
	}

	d.coord.Render(s)
	return cmd
}

func (d *Dispatcher) cast(s *roster.State, st device.CastStatus) {
	s.Volume = percent(st.VolumeLevel)
	s.Muted = st.Muted
	s.StatusText = st.StatusText
	d.coord.Render(s)
}

func startClock(s *roster.State) tea.Cmd {
	gen, started := s.Clock.Start()
	if !started {
		return nil
	}
	return TickCmd(s, gen)
}

func seconds(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func percent(level float64) int {
	return min(max(int(math.Round(level*100)), 0), 100)
}

func slotOf(s *roster.State) string {
	if s == nil {
		return "none"
	}
	return s.Slot.String()
}
