//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/castwave/internal/roster"
)

// Adapter exposes the selected receiver over MPRIS on D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter. Requests are delivered through
// send, normally tea.Program.Send.
func New(mirror *Mirror, send func(tea.Msg)) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer("castwave", &rootAdapter{}, &playerAdapter{mirror: mirror, send: send}),
	}

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Castwave", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"video/mp4", "video/webm", "audio/mpeg", "application/x-mpegurl"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	mirror *Mirror
	send   func(tea.Msg)
}

func (p *playerAdapter) intent(msg IntentMsg) error {
	if _, ok := p.mirror.Current(); !ok {
		return nil
	}
	p.send(msg)
	return nil
}

func (p *playerAdapter) Next() error {
	return p.intent(IntentMsg{Action: ActionSkip})
}

func (p *playerAdapter) Previous() error {
	return p.intent(IntentMsg{Action: ActionSetPosition, Seconds: 0})
}

func (p *playerAdapter) Pause() error {
	return p.intent(IntentMsg{Action: ActionPause})
}

func (p *playerAdapter) PlayPause() error {
	return p.intent(IntentMsg{Action: ActionPlayPause})
}

func (p *playerAdapter) Stop() error {
	return p.intent(IntentMsg{Action: ActionStop})
}

func (p *playerAdapter) Play() error {
	return p.intent(IntentMsg{Action: ActionPlay})
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.intent(IntentMsg{Action: ActionSeek, Seconds: int(offset / 1_000_000)})
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.intent(IntentMsg{Action: ActionSetPosition, Seconds: int(position / 1_000_000)})
}

// OpenUri casts uri to the selected receiver, as if typed in the URL field.
//
//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	return p.intent(IntentMsg{Action: ActionOpen, URL: uri})
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	snap, ok := p.mirror.Current()
	if !ok {
		return types.PlaybackStatusStopped, nil
	}
	switch snap.Playback {
	case roster.Playing:
		return types.PlaybackStatusPlaying, nil
	case roster.Paused:
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap, ok := p.mirror.Current()
	if !ok {
		return types.Metadata{}, nil
	}
	title := snap.Title
	if title == "" {
		title = snap.StatusText
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(snap.Address, snap.Title)),
		Length:  types.Microseconds(int64(snap.SliderMax) * 1_000_000),
		Title:   title,
		Artist:  []string{snap.Name},
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	snap, _ := p.mirror.Current()
	if snap.Volume == nil {
		return 0, nil
	}
	return float64(*snap.Volume) / 100, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	return p.intent(IntentMsg{Action: ActionSetVolume, Volume: int(math.Round(v * 100))})
}

func (p *playerAdapter) Position() (int64, error) {
	snap, _ := p.mirror.Current()
	return int64(snap.SliderValue) * 1_000_000, nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	snap, ok := p.mirror.Current()
	return ok && snap.SeekEnabled, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	snap, ok := p.mirror.Current()
	return ok && snap.SeekEnabled, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	snap, ok := p.mirror.Current()
	return ok && snap.PlayEnabled, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	snap, ok := p.mirror.Current()
	return ok && snap.PlayEnabled, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	snap, ok := p.mirror.Current()
	return ok && snap.SeekEnabled, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(address, title string) string {
	h := fnv.New64a()
	h.Write([]byte(address))
	h.Write([]byte{0})
	h.Write([]byte(title))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
