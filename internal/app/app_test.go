package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/castwave/internal/config"
	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/mpris"
	"github.com/llehouerou/castwave/internal/notify"
	"github.com/llehouerou/castwave/internal/roster"
	"github.com/llehouerou/castwave/internal/state"
)

type fakeService struct {
	found chan device.Info

	mu       sync.Mutex
	err      error
	connects []*device.Fake
}

func newFakeService() *fakeService {
	return &fakeService{found: make(chan device.Info, 4)}
}

func (f *fakeService) Discover(context.Context) ([]device.Handle, error) { return nil, nil }

func (f *fakeService) Watch(context.Context) <-chan device.Info { return f.found }

func (f *fakeService) Connect(_ context.Context, info device.Info) (device.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	h := device.NewFake(info.Address, info.Name)
	f.connects = append(f.connects, h)
	return h, nil
}

type fixture struct {
	model    Model
	fakes    []*device.Fake
	stateMgr *state.Mock
	notifier *notify.Recorder
	service  *fakeService
	stderr   chan string
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	return newFixtureWith(t, state.NewMock(), names...)
}

func newFixtureWith(t *testing.T, stateMgr *state.Mock, names ...string) *fixture {
	t.Helper()
	f := &fixture{
		stateMgr: stateMgr,
		notifier: &notify.Recorder{},
		service:  newFakeService(),
		stderr:   make(chan string, 1),
	}
	handles := make([]device.Handle, 0, len(names))
	for _, name := range names {
		fake := device.NewFake(name+":8009", name)
		f.fakes = append(f.fakes, fake)
		handles = append(handles, fake)
	}
	f.model = New(Deps{
		Config:   &config.Config{},
		Service:  f.service,
		Handles:  handles,
		StateMgr: f.stateMgr,
		Notifier: f.notifier,
		Mirror:   mpris.NewMirror(),
		Stderr:   f.stderr,
		Log:      zerolog.Nop(),
	})
	t.Cleanup(f.model.Close)
	return f
}

// update is a helper that calls Update and returns the Model.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	newModel, cmd := m.Update(msg)
	result, ok := newModel.(Model)
	if !ok {
		t.Fatalf("Update should return Model, got %T", newModel)
	}
	return result, cmd
}

// run executes cmd and every command batched inside it. Commands that block
// (subscription watches, timers) are abandoned.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, keyMsg(key))
}

// deliver publishes e from the receiver at idx and feeds the event the status
// watch reads back into the model.
func deliver(t *testing.T, m Model, idx int, e device.Event) (Model, tea.Cmd) {
	t.Helper()
	s, ok := m.Registry.Lookup(idx)
	require.True(t, ok, "no receiver at %d", idx)
	fake, ok := s.Handle.(*device.Fake)
	require.True(t, ok)
	fake.Publish(e)
	msg := WatchStatus(s, s.Listener())()
	require.IsType(t, StatusEventMsg{}, msg)
	return update(t, m, msg)
}

// connection publishes a connection change for address and feeds it back.
func connection(t *testing.T, m Model, fake *device.Fake, status device.Connection) (Model, tea.Cmd) {
	t.Helper()
	addr := fake.Info().Address
	fake.Publish(device.ConnectionStatus{Status: status, Address: addr})
	msg := WatchConnection(addr, m.connSubs[addr])()
	require.IsType(t, ConnectionMsg{}, msg)
	return update(t, m, msg)
}

func playing(current, duration float64) device.MediaStatus {
	return device.MediaStatus{
		PlayerState:  device.PlayerPlaying,
		CurrentTime:  current,
		Duration:     &duration,
		StreamType:   device.StreamBuffered,
		SupportsSeek: true,
		Title:        "Big Buck Bunny",
	}
}

func TestNew_FirstReceiverObserved(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")

	assert.Equal(t, 2, f.model.Registry.Len())
	assert.Equal(t, 0, f.model.CastBar.Index())
	snap, ok := f.model.CastBar.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Kitchen", snap.Name)
}

func TestNew_RestoresSavedSelection(t *testing.T) {
	mock := state.NewMock()
	mock.SetSelection(&state.SelectionState{DeviceAddress: "Office:8009", DeviceName: "Office"})

	f := newFixtureWith(t, mock, "Kitchen", "Office")

	assert.Equal(t, 1, f.model.Coord.SelectedIndex())
}

func TestNew_NoReceivers(t *testing.T) {
	f := newFixture(t)

	_, ok := f.model.CastBar.Snapshot()
	assert.False(t, ok, "baseline stays disabled")

	m, cmd := press(t, f.model, " ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.InfoMsg, "intents without a receiver are silent no-ops")
}

func TestInit_RequestsStatus(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")

	run(f.model.Init())

	for _, fake := range f.fakes {
		assert.Contains(t, fake.Calls(), "status")
	}
}

func TestSelect_DigitObservesAndPersists(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")

	m, _ := press(t, f.model, "2")

	assert.Equal(t, 1, m.CastBar.Index())
	sel, err := f.stateMgr.GetSelection()
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.Equal(t, "Office:8009", sel.DeviceAddress)
}

func TestSelect_DigitOutOfRangeIgnored(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, _ := press(t, f.model, "5")

	assert.Equal(t, 0, m.CastBar.Index())
	sel, _ := f.stateMgr.GetSelection()
	assert.Nil(t, sel)
}

func TestSelect_CycleWraps(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")

	m, _ := press(t, f.model, "tab")
	assert.Equal(t, 1, m.Coord.SelectedIndex())
	m, _ = press(t, m, "tab")
	assert.Equal(t, 0, m.Coord.SelectedIndex())
	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, 1, m.Coord.SelectedIndex())
}

func TestStatus_SelectSecondDeviceAndPlay(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")
	m, _ := press(t, f.model, "2")

	m, cmd := deliver(t, m, 1, playing(12, 600))
	assert.NotNil(t, cmd, "playing starts the progress clock")

	snap, ok := m.CastBar.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Office", snap.Name)
	assert.Equal(t, "Big Buck Bunny", snap.Title)
	assert.Equal(t, 12, snap.SliderValue)
	assert.Equal(t, 600, snap.SliderMax)

	// The unobserved receiver keeps its state without being rendered.
	m, _ = deliver(t, m, 0, playing(30, 100))
	kitchen, _ := m.Registry.Lookup(0)
	assert.Equal(t, roster.Playing, kitchen.Playback)
	snap, _ = m.CastBar.Snapshot()
	assert.Equal(t, "Office", snap.Name)
	assert.Equal(t, 12, snap.SliderValue)
}

func TestStatus_WatchEndsWhenReceiverLeaves(t *testing.T) {
	f := newFixture(t, "Kitchen")
	s, _ := f.model.Registry.Lookup(0)
	watch := WatchStatus(s, s.Listener())

	m, _ := connection(t, f.model, f.fakes[0], device.Lost)

	assert.Equal(t, 0, m.Registry.Len())
	assert.Nil(t, watch(), "closed listener ends the watch")
}

func TestConnection_LostThenReconnected(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")

	m, _ := connection(t, f.model, f.fakes[0], device.Lost)
	require.Equal(t, 1, m.Registry.Len())
	snap, ok := m.CastBar.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Office", snap.Name, "selection falls back to the neighbour")
	require.Len(t, f.notifier.Sent(), 1)
	assert.Equal(t, "Kitchen disconnected", f.notifier.Sent()[0].Title)

	m, cmd := connection(t, m, f.fakes[0], device.Connected)
	require.Equal(t, 2, m.Registry.Len())
	kitchen, _ := m.Registry.LookupByAddress("Kitchen:8009")
	idx, _ := kitchen.Slot.Index()
	assert.Equal(t, 1, idx, "rejoins at the end of the roster")

	run(cmd)
	assert.Contains(t, f.fakes[0].Calls(), "status")
	require.Len(t, f.fakes[0].Volumes(), 1)
	assert.InDelta(t, 0.25, f.fakes[0].Volumes()[0], 1e-9)
	assert.Equal(t, "Kitchen connected", f.notifier.Sent()[1].Title)
	assert.Equal(t, uint32(1), f.notifier.Sent()[1].ReplacesID, "reconnect replaces the lost notice")
}

func TestConnection_ConnectedWhileAttachedOnlyRefreshes(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, cmd := connection(t, f.model, f.fakes[0], device.Connected)
	run(cmd)

	assert.Equal(t, 1, m.Registry.Len())
	assert.Equal(t, []string{"status"}, f.fakes[0].Calls())
	assert.Empty(t, f.notifier.Sent())
}

func TestConnection_NotificationsDisabled(t *testing.T) {
	f := newFixture(t, "Kitchen")
	off := false
	f.model.Config.Notifications = &off

	connection(t, f.model, f.fakes[0], device.Lost)

	assert.Empty(t, f.notifier.Sent())
}

func TestVolume_StepSendsAndSuppressesEcho(t *testing.T) {
	f := newFixture(t, "Kitchen")
	m, _ := deliver(t, f.model, 0, device.CastStatus{VolumeLevel: 0.4})
	require.Equal(t, 40, m.CastBar.Volume())

	m, cmd := press(t, m, "+")
	run(cmd)
	require.Len(t, f.fakes[0].Volumes(), 1)
	assert.InDelta(t, 0.45, f.fakes[0].Volumes()[0], 1e-9)
	assert.Equal(t, 45, m.CastBar.Volume())

	// A stale echo inside the window does not move the control.
	m, _ = deliver(t, m, 0, device.CastStatus{VolumeLevel: 0.4})
	assert.Equal(t, 45, m.CastBar.Volume())

	m, _ = update(t, m, expired(1))
	m, _ = deliver(t, m, 0, device.CastStatus{VolumeLevel: 0.5})
	assert.Equal(t, 50, m.CastBar.Volume())
}

func TestVolume_BoundariesAlwaysSent(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, cmd := press(t, f.model, "M")
	run(cmd)
	_, cmd = press(t, m, "m")
	run(cmd)

	assert.Equal(t, []float64{1, 0}, f.fakes[0].Volumes())
}

func TestURL_SubmitLoadsAndRecordsHistory(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, _ := press(t, f.model, "o")
	require.True(t, m.URLInput.Focused())

	m, cmd := update(t, m, submit("http://host/movie.mp4"))
	run(cmd)

	assert.Equal(t, []string{"http://host/movie.mp4"}, f.fakes[0].Plays())
	history, _ := f.stateMgr.History()
	assert.Equal(t, []string{"http://host/movie.mp4"}, history)
	assert.Empty(t, m.InfoMsg)
}

func TestURL_SubmitWithoutSchemeShowsInfo(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, cmd := update(t, f.model, submit("host/movie.mp4"))

	assert.Nil(t, cmd)
	assert.Equal(t, "enter a URL to play", m.InfoMsg)
	history, _ := f.stateMgr.History()
	assert.Empty(t, history)
}

func TestURL_KeysGoToFieldWhileFocused(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")

	m, _ := press(t, f.model, "o")
	m, _ = press(t, m, "2")

	assert.Equal(t, 0, m.Coord.SelectedIndex(), "digits are typed, not selecting")
	assert.Equal(t, "2", m.URLInput.Value())
}

func TestSeek_UnsupportedShowsInfo(t *testing.T) {
	f := newFixture(t, "Kitchen")
	st := playing(10, 100)
	st.SupportsSeek = false
	m, _ := deliver(t, f.model, 0, st)

	m, cmd := press(t, m, "right")

	assert.Nil(t, cmd)
	assert.Equal(t, "stream does not support seeking", m.InfoMsg)
	assert.Empty(t, f.fakes[0].Seeks())
}

func TestSeek_RelativeUsesConfiguredStep(t *testing.T) {
	f := newFixture(t, "Kitchen")
	m, _ := deliver(t, f.model, 0, playing(30, 100))

	_, cmd := press(t, m, "left")
	run(cmd)

	assert.Equal(t, []float64{20}, f.fakes[0].Seeks())
}

func TestCommandFailure_ShowsFormattedError(t *testing.T) {
	f := newFixture(t, "Kitchen")
	m, _ := deliver(t, f.model, 0, playing(30, 100))
	f.fakes[0].SetError(errors.New("connection reset"))

	m, cmd := press(t, m, " ")
	for _, msg := range run(cmd) {
		m, _ = update(t, m, msg)
	}

	assert.Equal(t, "Failed to pause playback: connection reset", m.ErrorMsg)
}

func TestDeviceFound_ConnectsAndJoins(t *testing.T) {
	f := newFixture(t, "Kitchen")
	info := device.Info{Address: "Den:8009", Name: "Den", Model: "Chromecast"}

	m, cmd := update(t, f.model, DeviceFoundMsg{Info: info})
	var connected []tea.Msg
	for _, msg := range run(cmd) {
		if _, ok := msg.(DeviceConnectedMsg); ok {
			connected = append(connected, msg)
		}
	}
	require.Len(t, connected, 1)

	m, cmd = update(t, m, connected[0])
	run(cmd)

	assert.Equal(t, 2, m.Registry.Len())
	require.Len(t, f.service.connects, 1)
	assert.Contains(t, f.service.connects[0].Calls(), "status")
	require.Len(t, f.notifier.Sent(), 1)
	assert.Equal(t, "Den connected", f.notifier.Sent()[0].Title)

	// Seen again: no second connection.
	_, cmd = update(t, m, DeviceFoundMsg{Info: info})
	assert.Empty(t, run(cmd))
}

func TestDeviceConnected_Error(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, _ := update(t, f.model, DeviceConnectedMsg{
		Info: device.Info{Address: "Den:8009", Name: "Den"},
		Err:  errors.New("tls handshake timeout"),
	})

	assert.Equal(t, 1, m.Registry.Len())
	assert.Equal(t, "Failed to connect to device 'Den': tls handshake timeout", m.ErrorMsg)
}

func TestIntent_FromDesktop(t *testing.T) {
	f := newFixture(t, "Kitchen")
	m, _ := deliver(t, f.model, 0, playing(30, 100))

	m, cmd := update(t, m, mpris.IntentMsg{Action: mpris.ActionPlay})
	assert.Nil(t, cmd, "play while playing is a no-op")

	m, cmd = update(t, m, mpris.IntentMsg{Action: mpris.ActionPause})
	run(cmd)
	_, cmd = update(t, m, mpris.IntentMsg{Action: mpris.ActionSetVolume, Volume: 30})
	run(cmd)

	assert.Equal(t, []string{"pause", "volume"}, f.fakes[0].Calls())
}

func TestIntent_OpenCastsAndRecordsHistory(t *testing.T) {
	f := newFixture(t, "Kitchen")

	_, cmd := update(t, f.model, mpris.IntentMsg{Action: mpris.ActionOpen, URL: "http://nas.local/movie.mp4"})
	run(cmd)

	assert.Equal(t, []string{"http://nas.local/movie.mp4"}, f.fakes[0].Plays())
	history, _ := f.stateMgr.History()
	assert.Equal(t, []string{"http://nas.local/movie.mp4"}, history)
}

func TestHelp_OpenAndClose(t *testing.T) {
	f := newFixture(t, "Kitchen")
	m, _ := update(t, f.model, tea.WindowSizeMsg{Width: 100, Height: 60})

	m, _ = press(t, m, "?")
	require.True(t, m.ShowHelp)
	assert.Contains(t, m.View(), "Playback")

	m, cmd := press(t, m, "esc")
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.False(t, m.ShowHelp)
}

func TestView_ShowsRosterAndStatus(t *testing.T) {
	f := newFixture(t, "Kitchen", "Office")
	m, _ := update(t, f.model, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "Kitchen")
	assert.Contains(t, view, "Office")
	assert.Contains(t, view, "?: help")

	m.ErrorMsg = "Failed to seek: boom"
	assert.Contains(t, m.View(), "Failed to seek: boom")
}

func TestStderr_ShownAsError(t *testing.T) {
	f := newFixture(t, "Kitchen")

	m, cmd := update(t, f.model, StderrMsg("mdns: bad packet"))

	assert.Equal(t, "mdns: bad packet", m.ErrorMsg)
	require.NotNil(t, cmd, "keeps watching stderr")

	f.stderr <- "mdns: second"
	assert.Equal(t, StderrMsg("mdns: second"), cmd())

	close(f.stderr)
	assert.Nil(t, cmd(), "watch ends with the capture")
}

func TestClose_ReleasesReceiversAndState(t *testing.T) {
	f := newFixture(t, "Kitchen")
	s, _ := f.model.Registry.Lookup(0)

	f.model.Close()

	assert.True(t, f.stateMgr.IsClosed())
	assert.Nil(t, WatchStatus(s, s.Listener())(), "subscriptions closed with the handle")
}
