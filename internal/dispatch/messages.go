package dispatch

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/device"
	"github.com/llehouerou/castwave/internal/roster"
)

// TickPeriod is the progress clock period.
const TickPeriod = time.Second

// EventMsg carries a status event from the device whose listener is Origin.
// Origin is resolved against the registry when the message is processed.
type EventMsg struct {
	Origin *roster.State
	Event  device.Event
}

// TickMsg advances Origin's progress clock if Generation is still live.
type TickMsg struct {
	Origin     *roster.State
	Generation int
}

// TickCmd schedules the next progress tick for origin.
func TickCmd(origin *roster.State, gen int) tea.Cmd {
	return tea.Tick(TickPeriod, func(time.Time) tea.Msg {
		return TickMsg{Origin: origin, Generation: gen}
	})
}
