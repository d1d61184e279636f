// internal/app/update.go
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/control"
	"github.com/llehouerou/castwave/internal/debounce"
	"github.com/llehouerou/castwave/internal/dispatch"
	"github.com/llehouerou/castwave/internal/errmsg"
	"github.com/llehouerou/castwave/internal/mpris"
	"github.com/llehouerou/castwave/internal/ui"
	"github.com/llehouerou/castwave/internal/ui/helpbindings"
	"github.com/llehouerou/castwave/internal/ui/urlinput"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.URLInput.SetWidth(msg.Width)
		m.Help.Resize(msg.Width, msg.Height-ui.BorderHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case StatusEventMsg:
		cmd := m.Dispatcher.Dispatch(msg.EventMsg)
		return m, tea.Batch(cmd, WatchStatus(msg.Origin, msg.Sub))

	case dispatch.TickMsg:
		return m, m.Dispatcher.Tick(msg)

	case debounce.ExpiredMsg:
		m.Coord.ExpireVolume(msg.Generation)
		return m, nil

	case ConnectionMsg:
		return m.handleConnection(msg)

	case DeviceFoundMsg:
		return m.handleDeviceFound(msg)

	case DeviceConnectedMsg:
		return m.handleDeviceConnected(msg)

	case control.ResultMsg:
		if msg.Err != nil {
			m.ErrorMsg = errmsg.Format(msg.Op, msg.Err)
		}
		return m, nil

	case CommandErrorMsg:
		m.Log.Warn().Err(msg.Err).Str("device", msg.Address).Str("op", string(msg.Op)).Msg("command failed")
		m.ErrorMsg = errmsg.Format(msg.Op, msg.Err)
		return m, nil

	case urlinput.SubmitMsg:
		return m, m.cast(msg.URL)

	case urlinput.CancelMsg:
		return m, nil

	case helpbindings.CloseMsg:
		m.ShowHelp = false
		return m, nil

	case mpris.IntentMsg:
		return m, m.handleIntent(msg)

	case StderrMsg:
		m.ErrorMsg = string(msg)
		return m, WatchStderr(m.stderr)
	}

	// Cursor blink and other text input internals.
	if m.URLInput.Focused() {
		return m, m.URLInput.Update(msg)
	}
	return m, nil
}

// cast loads url on the selected receiver and records it in the history.
func (m *Model) cast(url string) tea.Cmd {
	cmd := m.intent(m.Control.Load(url))
	if cmd == nil || m.StateMgr == nil {
		return cmd
	}
	if err := m.StateMgr.AddHistory(url); err != nil {
		m.Log.Warn().Err(err).Msg("save URL history")
		m.ErrorMsg = errmsg.Format(errmsg.OpHistorySave, err)
	}
	m.loadHistory()
	return cmd
}
