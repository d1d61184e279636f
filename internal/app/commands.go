// internal/app/commands.go
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/dispatch"
	"github.com/llehouerou/castwave/internal/errmsg"
	"github.com/llehouerou/castwave/internal/roster"
)

// WatchStatus waits for the next event on the status subscription registered
// for origin. One watch is outstanding per subscription, which keeps the
// device's events in arrival order. It returns nil once the subscription ends.
func WatchStatus(origin *roster.State, sub *device.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.Events:
			return StatusEventMsg{
				EventMsg: dispatch.EventMsg{Origin: origin, Event: e},
				Sub:      sub,
			}
		case <-sub.Done:
			return nil
		}
	}
}

// WatchConnection waits for the next connection change of the receiver at address.
func WatchConnection(address string, sub *device.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case e := <-sub.Events:
				cs, ok := e.(device.ConnectionStatus)
				if !ok {
					continue
				}
				return ConnectionMsg{Address: address, Status: cs.Status, Sub: sub}
			case <-sub.Done:
				return nil
			}
		}
	}
}

// WatchDevices waits for the next receiver reported by discovery.
func WatchDevices(ch <-chan device.Info) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		info, ok := <-ch
		if !ok {
			return nil
		}
		return DeviceFoundMsg{Info: info}
	}
}

// ConnectCmd opens a handle to a receiver found after startup.
func (m Model) ConnectCmd(info device.Info) tea.Cmd {
	svc := m.Service
	timeout := m.Config.CommandTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h, err := svc.Connect(ctx, info)
		return DeviceConnectedMsg{Info: info, Handle: h, Err: err}
	}
}

// RequestStatusCmd asks a receiver to publish fresh status. Its events arrive
// through the status subscription, so it must be issued after subscribing.
func (m Model) RequestStatusCmd(h device.Handle) tea.Cmd {
	timeout := m.Config.CommandTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := h.RequestStatus(ctx); err != nil {
			return CommandErrorMsg{Op: errmsg.OpRequestStatus, Address: h.Info().Address, Err: err}
		}
		return nil
	}
}

// ReconnectVolumeCmd applies the configured volume to a receiver that came back.
func (m Model) ReconnectVolumeCmd(h device.Handle) tea.Cmd {
	level, ok := m.Config.GetReconnectVolume()
	if !ok {
		return nil
	}
	timeout := m.Config.CommandTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := h.SetVolume(ctx, level); err != nil {
			return CommandErrorMsg{Op: errmsg.OpVolume, Address: h.Info().Address, Err: err}
		}
		return nil
	}
}

// WatchStderr waits for the next captured stderr line.
func WatchStderr(lines <-chan string) tea.Cmd {
	if lines == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return StderrMsg(line)
	}
}
