// Package control turns user intents into commands for the observed device.
package control

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/errmsg"
	"github.com/llehouerou/castwave/internal/roster"
	"github.com/llehouerou/castwave/internal/selection"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultSkipOffset = 3
)

var (
	// ErrNoDevice is returned when an intent arrives with nothing selected.
	ErrNoDevice = errors.New("no device selected")
	// ErrSeekUnsupported is returned when the current stream cannot seek.
	ErrSeekUnsupported = errors.New("stream does not support seeking")
	// ErrNoURL is returned when play is requested on an idle device without a URL.
	ErrNoURL = errors.New("enter a URL to play")
)

// ResultMsg reports the outcome of a command sent to a device.
type ResultMsg struct {
	Op      errmsg.Op
	Address string
	Err     error
}

// Options tune the controller.
type Options struct {
	CommandTimeout time.Duration
	SkipOffset     int // seconds before the end SkipForward seeks to
}

// Controller handles intents for whichever device the coordinator observes.
// Commands run outside the loop; only their ResultMsg comes back.
type Controller struct {
	coord      *selection.Coordinator
	timeout    time.Duration
	skipOffset int
	log        zerolog.Logger
}

// New creates a controller.
func New(coord *selection.Coordinator, opts Options, log zerolog.Logger) *Controller {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = defaultTimeout
	}
	if opts.SkipOffset <= 0 {
		opts.SkipOffset = defaultSkipOffset
	}
	return &Controller{
		coord:      coord,
		timeout:    opts.CommandTimeout,
		skipOffset: opts.SkipOffset,
		log:        log,
	}
}

// Select observes the device at index. It reports false for an index
// outside the roster.
func (c *Controller) Select(index int) bool {
	return c.coord.Select(index)
}

// Play is the play button: resume paused media, pause playing media, or load
// url when the device is idle.
func (c *Controller) Play(url string) (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}

	switch s.Playback {
	case roster.Paused:
		s.Playback = roster.Playing
		c.coord.Render(s)
		return c.run(s, errmsg.OpResume, func(ctx context.Context, h device.Handle) error {
			return h.Resume(ctx)
		}), nil

	case roster.Playing:
		if s.Live {
			return nil, nil
		}
		return c.pause(s), nil

	default:
		return c.load(s, url)
	}
}

// Load casts url to the observed device, replacing whatever it plays.
func (c *Controller) Load(url string) (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	return c.load(s, url)
}

// Pause pauses playing media; anything else is a no-op.
func (c *Controller) Pause() (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	if s.Playback != roster.Playing || s.Live {
		return nil, nil
	}
	return c.pause(s), nil
}

// Stop stops playback and resets the local progress.
func (c *Controller) Stop() (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	s.ResetPlayback()
	c.coord.Render(s)
	return c.run(s, errmsg.OpStop, func(ctx context.Context, h device.Handle) error {
		return h.Stop(ctx)
	}), nil
}

// SeekAbsolute seeks to seconds, clamped to the media duration.
func (c *Controller) SeekAbsolute(seconds int) (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	if !s.HasMedia() {
		return nil, nil
	}
	if !s.SupportsSeek || s.Live {
		return nil, ErrSeekUnsupported
	}
	target := max(seconds, 0)
	if d := s.EffectiveDuration(); d != nil {
		target = min(target, *d)
	}
	return c.run(s, errmsg.OpSeek, func(ctx context.Context, h device.Handle) error {
		return h.Seek(ctx, float64(target))
	}), nil
}

// SeekRelative seeks delta seconds from the current position.
func (c *Controller) SeekRelative(delta int) (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	return c.SeekAbsolute(s.Elapsed() + delta)
}

// SkipForward seeks to a few seconds before the end.
func (c *Controller) SkipForward() (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	d := s.EffectiveDuration()
	if d == nil {
		return nil, nil
	}
	return c.SeekAbsolute(*d - c.skipOffset)
}

// SetVolume sets the observed device's volume in percent. Every value is sent;
// the echo window only decides whether the device's confirmation is rendered.
func (c *Controller) SetVolume(percent int) (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	percent = min(max(percent, 0), 100)
	expire := c.coord.ArmVolume(percent)
	s.Volume = percent

	fraction := float64(percent) / 100
	send := c.run(s, errmsg.OpVolume, func(ctx context.Context, h device.Handle) error {
		return h.SetVolume(ctx, fraction)
	})
	return tea.Batch(send, expire), nil
}

// StepVolume changes the volume by delta percent.
func (c *Controller) StepVolume(delta int) (tea.Cmd, error) {
	s, err := c.selected()
	if err != nil {
		return nil, err
	}
	return c.SetVolume(s.Volume + delta)
}

func (c *Controller) pause(s *roster.State) tea.Cmd {
	s.Playback = roster.Paused
	s.Clock.Stop()
	c.coord.Render(s)
	return c.run(s, errmsg.OpPause, func(ctx context.Context, h device.Handle) error {
		return h.Pause(ctx)
	})
}

func (c *Controller) load(s *roster.State, url string) (tea.Cmd, error) {
	url = strings.TrimSpace(url)
	if !strings.Contains(url, "://") {
		return nil, ErrNoURL
	}
	return c.run(s, errmsg.OpPlay, func(ctx context.Context, h device.Handle) error {
		return h.Play(ctx, url)
	}), nil
}

func (c *Controller) selected() (*roster.State, error) {
	s, ok := c.coord.Selected()
	if !ok {
		return nil, ErrNoDevice
	}
	return s, nil
}

func (c *Controller) run(s *roster.State, op errmsg.Op, fn func(context.Context, device.Handle) error) tea.Cmd {
	h := s.Handle
	address := s.Address()
	timeout := c.timeout
	log := c.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := fn(ctx, h)
		if err != nil {
			log.Warn().Err(err).Str("device", address).Str("op", string(op)).Msg("command failed")
		}
		return ResultMsg{Op: op, Address: address, Err: err}
	}
}
