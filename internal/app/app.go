// internal/app/app.go
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/castwave/internal/config"
	"github.com/llehouerou/castwave/internal/control"
	"github.com/llehouerou/castwave/internal/debounce"
	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/dispatch"
	"github.com/llehouerou/castwave/internal/keymap"
	"github.com/llehouerou/castwave/internal/mpris"
	"github.com/llehouerou/castwave/internal/notify"
	"github.com/llehouerou/castwave/internal/roster"
	"github.com/llehouerou/castwave/internal/selection"
	"github.com/llehouerou/castwave/internal/state"
	"github.com/llehouerou/castwave/internal/ui/castbar"
	"github.com/llehouerou/castwave/internal/ui/helpbindings"
	"github.com/llehouerou/castwave/internal/ui/urlinput"
)

// Deps are the collaborators the model is built from.
type Deps struct {
	Config   *config.Config
	Service  device.Service
	Handles  []device.Handle // receivers found at startup, in roster order
	StateMgr state.Interface
	Notifier notify.Notifier
	Mirror   *mpris.Mirror // optional second presentation sink
	Stderr   <-chan string // captured stderr lines, nil when not captured
	Log      zerolog.Logger
}

// Model is the root application model containing all state.
type Model struct {
	Config   *config.Config
	Service  device.Service
	StateMgr state.Interface
	Notices  *notify.Board
	Log      zerolog.Logger

	Registry   *roster.Registry
	Coord      *selection.Coordinator
	Dispatcher *dispatch.Dispatcher
	Control    *control.Controller
	CastBar    *castbar.Model

	// handles holds every receiver connection, attached or waiting to reconnect.
	handles  map[string]device.Handle
	connSubs map[string]*device.Subscription
	found    <-chan device.Info
	stderr   <-chan string
	cancel   context.CancelFunc

	URLInput urlinput.Model
	Help     helpbindings.Model
	ShowHelp bool
	keys     *keymap.Resolver

	// restoreAddress is the saved selection, applied when that receiver joins.
	restoreAddress string

	ErrorMsg string
	InfoMsg  string
	Width    int
	Height   int
	now      func() time.Time
}

// New builds the model and attaches the startup receivers in order. The first
// one is observed unless the saved selection names another.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := deps.Log.With().Str("component", "app").Logger()

	bar := castbar.New()
	sinks := selection.Sinks{bar}
	if deps.Mirror != nil {
		sinks = append(sinks, deps.Mirror)
	}

	reg := roster.NewRegistry()
	coord := selection.New(reg, sinks, debounce.NewGate(cfg.VolumeDebounce()), log)

	m := Model{
		Config:     cfg,
		Service:    deps.Service,
		StateMgr:   deps.StateMgr,
		Notices:    notify.NewBoard(deps.Notifier),
		Log:        log,
		Registry:   reg,
		Coord:      coord,
		Dispatcher: dispatch.New(reg, coord, log),
		Control: control.New(coord, control.Options{
			CommandTimeout: cfg.CommandTimeout(),
			SkipOffset:     cfg.GetSkipOffset(),
		}, log),
		CastBar:  bar,
		stderr:   deps.Stderr,
		handles:  make(map[string]device.Handle),
		connSubs: make(map[string]*device.Subscription),
		URLInput: urlinput.New(),
		Help:     helpbindings.New(),
		keys:     keymap.Main(),
		now:      time.Now,
	}

	if m.StateMgr != nil {
		if sel, err := m.StateMgr.GetSelection(); err != nil {
			log.Warn().Err(err).Msg("load saved selection")
		} else if sel != nil {
			m.restoreAddress = sel.DeviceAddress
		}
		m.loadHistory()
	}

	// Init issues the status watches and requests.
	for _, h := range deps.Handles {
		m.addHandle(h)
		m.join(h)
	}

	if m.Service != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.found = m.Service.Watch(ctx)
	}
	return m
}

// Init starts one watch per subscription, requests fresh status from every
// receiver and listens for receivers that appear later.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{WatchDevices(m.found), WatchStderr(m.stderr)}
	for _, s := range m.Registry.States() {
		cmds = append(cmds,
			WatchStatus(s, s.Listener()),
			m.RequestStatusCmd(s.Handle))
	}
	for addr, sub := range m.connSubs {
		cmds = append(cmds, WatchConnection(addr, sub))
	}
	return tea.Batch(cmds...)
}

// Close stops discovery and releases every receiver and the state store.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	for addr, h := range m.handles {
		if err := h.Close(); err != nil {
			m.Log.Debug().Err(err).Str("device", addr).Msg("close receiver")
		}
	}
	if m.StateMgr != nil {
		if err := m.StateMgr.Close(); err != nil {
			m.Log.Warn().Err(err).Msg("close state")
		}
	}
}

// addHandle keeps h for the rest of the session and subscribes to its
// connection changes.
func (m *Model) addHandle(h device.Handle) *device.Subscription {
	addr := h.Info().Address
	m.handles[addr] = h
	sub := h.SubscribeConnection()
	m.connSubs[addr] = sub
	return sub
}

// join attaches h and returns the commands that read its status. The status
// request is issued after the subscription exists so no reply is missed.
func (m *Model) join(h device.Handle) tea.Cmd {
	s := m.Dispatcher.Join(h)
	if m.restoreAddress != "" && s.Address() == m.restoreAddress {
		if idx, ok := s.Slot.Index(); ok {
			m.Coord.Select(idx)
		}
		m.restoreAddress = ""
	}
	return tea.Batch(WatchStatus(s, s.Listener()), m.RequestStatusCmd(h))
}

func (m *Model) notify(n notify.Notification) {
	if !m.Config.NotificationsEnabled() {
		return
	}
	if err := m.Notices.Post(n); err != nil {
		m.Log.Debug().Err(err).Msg("notification")
	}
}

func (m *Model) loadHistory() {
	urls, err := m.StateMgr.History()
	if err != nil {
		m.Log.Warn().Err(err).Msg("load URL history")
		return
	}
	m.URLInput.SetHistory(urls)
}
