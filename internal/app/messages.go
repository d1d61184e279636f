// Package app contains the root bubbletea model that wires receivers, the
// reconciliation core and the presentation together.
package app

import (
	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/dispatch"
	"github.com/llehouerou/castwave/internal/errmsg"
)

// StatusEventMsg is one event read from a device's status subscription. Sub
// identifies the subscription so the watch can be re-armed on it.
type StatusEventMsg struct {
	dispatch.EventMsg
	Sub *device.Subscription
}

// ConnectionMsg reports a receiver connecting or being lost.
type ConnectionMsg struct {
	Address string
	Status  device.Connection
	Sub     *device.Subscription
}

// DeviceFoundMsg reports a receiver that appeared after startup.
type DeviceFoundMsg struct {
	Info device.Info
}

// DeviceConnectedMsg carries the result of connecting to a found receiver.
type DeviceConnectedMsg struct {
	Info   device.Info
	Handle device.Handle
	Err    error
}

// StderrMsg carries a line captured from stderr.
type StderrMsg string

// CommandErrorMsg reports a failed command that has no control.ResultMsg,
// such as a status request.
type CommandErrorMsg struct {
	Op      errmsg.Op
	Address string
	Err     error
}
