// internal/app/update_input.go
package app

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/control"
	"github.com/llehouerou/castwave/internal/keymap"
	"github.com/llehouerou/castwave/internal/mpris"
	"github.com/llehouerou/castwave/internal/roster"
	"github.com/llehouerou/castwave/internal/state"
	"github.com/llehouerou/castwave/internal/ui"
)

// handleKeyMsg routes a key to the help overlay, the URL field or the main
// key map, in that order.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowHelp {
		return m, m.Help.Update(msg)
	}
	if m.URLInput.Focused() {
		return m, m.URLInput.Update(msg)
	}

	m.ErrorMsg = ""
	m.InfoMsg = ""

	key := msg.String()
	if idx, ok := m.keys.DeviceIndex(key); ok {
		m.selectDevice(idx)
		return m, nil
	}
	return m, m.handleAction(m.keys.Resolve(key))
}

func (m *Model) handleAction(action keymap.Action) tea.Cmd {
	step := m.Config.GetVolumeStep()
	seek := m.Config.GetSeekStep()

	switch action {
	case keymap.ActionQuit:
		return tea.Quit
	case keymap.ActionHelp:
		m.ShowHelp = true
		m.Help.Resize(m.Width, m.Height-ui.BorderHeight)
		return nil
	case keymap.ActionNextDevice:
		m.cycleDevice(1)
		return nil
	case keymap.ActionPrevDevice:
		m.cycleDevice(-1)
		return nil
	case keymap.ActionEditURL:
		return m.URLInput.Focus()
	case keymap.ActionRefresh:
		if s, ok := m.Coord.Selected(); ok {
			return m.RequestStatusCmd(s.Handle)
		}
		return nil

	case keymap.ActionPlayPause:
		return m.intent(m.Control.Play(m.URLInput.Value()))
	case keymap.ActionStop:
		return m.intent(m.Control.Stop())
	case keymap.ActionSeekForward:
		return m.intent(m.Control.SeekRelative(seek))
	case keymap.ActionSeekBack:
		return m.intent(m.Control.SeekRelative(-seek))
	case keymap.ActionSkip:
		return m.intent(m.Control.SkipForward())
	case keymap.ActionRestart:
		return m.intent(m.Control.SeekAbsolute(0))

	case keymap.ActionVolumeUp:
		return m.volume(m.Control.StepVolume(step))
	case keymap.ActionVolumeDown:
		return m.volume(m.Control.StepVolume(-step))
	case keymap.ActionVolumeMin:
		return m.volume(m.Control.SetVolume(0))
	case keymap.ActionVolumeMax:
		return m.volume(m.Control.SetVolume(100))
	}
	return nil
}

// handleIntent applies a media-key request from the desktop.
func (m *Model) handleIntent(msg mpris.IntentMsg) tea.Cmd {
	switch msg.Action {
	case mpris.ActionPlayPause:
		return m.intent(m.Control.Play(m.URLInput.Value()))
	case mpris.ActionPlay:
		if s, ok := m.Coord.Selected(); ok && s.Playback == roster.Playing {
			return nil
		}
		return m.intent(m.Control.Play(m.URLInput.Value()))
	case mpris.ActionPause:
		return m.intent(m.Control.Pause())
	case mpris.ActionStop:
		return m.intent(m.Control.Stop())
	case mpris.ActionSkip:
		return m.intent(m.Control.SkipForward())
	case mpris.ActionSeek:
		return m.intent(m.Control.SeekRelative(msg.Seconds))
	case mpris.ActionSetPosition:
		return m.intent(m.Control.SeekAbsolute(msg.Seconds))
	case mpris.ActionSetVolume:
		return m.volume(m.Control.SetVolume(msg.Volume))
	case mpris.ActionOpen:
		return m.cast(msg.URL)
	}
	return nil
}

// intent turns a controller outcome into the command to run. Nothing selected
// makes every intent a no-op; other refusals are shown as information.
func (m *Model) intent(cmd tea.Cmd, err error) tea.Cmd {
	if err != nil && !errors.Is(err, control.ErrNoDevice) {
		m.InfoMsg = err.Error()
	}
	return cmd
}

// volume is intent for volume commands; the bar shows the requested level
// while the receiver's echo is suppressed.
func (m *Model) volume(cmd tea.Cmd, err error) tea.Cmd {
	cmd = m.intent(cmd, err)
	if s, ok := m.Coord.Selected(); ok && cmd != nil {
		m.CastBar.ShowVolume(s.Volume)
	}
	return cmd
}

// selectDevice observes the receiver at idx and remembers it for next start.
func (m *Model) selectDevice(idx int) {
	if !m.Control.Select(idx) {
		return
	}
	m.restoreAddress = ""
	s, ok := m.Coord.Selected()
	if !ok || m.StateMgr == nil {
		return
	}
	m.StateMgr.SaveSelection(state.SelectionState{
		DeviceAddress: s.Address(),
		DeviceName:    s.Info.Name,
	})
}

func (m *Model) cycleDevice(delta int) {
	n := m.Registry.Len()
	if n == 0 {
		return
	}
	idx := m.Coord.SelectedIndex()
	m.selectDevice(((idx+delta)%n + n) % n)
}
