// internal/app/update_devices.go
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/errmsg"
	"github.com/llehouerou/castwave/internal/notify"
)

// handleConnection follows a receiver's connection. A lost receiver leaves the
// roster but keeps its handle, which reconnects on its own; when it comes
// back it joins again at the end of the roster.
func (m Model) handleConnection(msg ConnectionMsg) (tea.Model, tea.Cmd) {
	next := WatchConnection(msg.Address, msg.Sub)
	h, ok := m.handles[msg.Address]
	if !ok {
		return m, next
	}
	name := h.Info().Name

	switch msg.Status {
	case device.Lost:
		if _, left := m.Dispatcher.Leave(msg.Address); left {
			m.notify(notify.DeviceLost(msg.Address, name))
		}
		return m, next

	case device.Connected:
		if s, ok := m.Registry.LookupByAddress(msg.Address); ok && s.IsAttached() {
			return m, tea.Batch(next, m.RequestStatusCmd(h))
		}
		m.Log.Info().Str("device", msg.Address).Msg("receiver reconnected")
		m.notify(notify.DeviceJoined(msg.Address, name, h.Info().Model))
		return m, tea.Batch(next, m.join(h), m.ReconnectVolumeCmd(h))
	}
	return m, next
}

// handleDeviceFound connects to a receiver discovery reported after startup.
func (m Model) handleDeviceFound(msg DeviceFoundMsg) (tea.Model, tea.Cmd) {
	next := WatchDevices(m.found)
	if _, known := m.handles[msg.Info.Address]; known {
		return m, next
	}
	m.Log.Info().Str("device", msg.Info.Address).Str("name", msg.Info.Name).Msg("receiver found")
	return m, tea.Batch(next, m.ConnectCmd(msg.Info))
}

func (m Model) handleDeviceConnected(msg DeviceConnectedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Log.Warn().Err(msg.Err).Str("device", msg.Info.Address).Msg("connect")
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpConnect, msg.Info.Name, msg.Err)
		return m, nil
	}
	h := msg.Handle
	if _, known := m.handles[msg.Info.Address]; known {
		_ = h.Close()
		return m, nil
	}

	sub := m.addHandle(h)
	m.notify(notify.DeviceJoined(msg.Info.Address, h.Info().Name, h.Info().Model))
	return m, tea.Batch(WatchConnection(msg.Info.Address, sub), m.join(h))
}
