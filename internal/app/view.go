// internal/app/view.go
package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/castwave/internal/ui/devicebar"
	"github.com/llehouerou/castwave/internal/ui/render"
	"github.com/llehouerou/castwave/internal/ui/styles"
)

const statusHint = "?: help  o: cast URL  tab: next receiver  q: quit"

// View renders the application UI.
func (m Model) View() string {
	if m.Width == 0 {
		return ""
	}
	if m.ShowHelp {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.Help.View())
	}

	parts := []string{
		devicebar.Render(m.deviceEntries(), m.Coord.SelectedIndex(), m.Width, m.now()),
		m.CastBar.View(m.Width),
		m.statusLine(),
	}
	if m.URLInput.Focused() {
		parts = append(parts, m.URLInput.View())
	}
	return strings.Join(parts, "\n")
}

func (m Model) deviceEntries() []devicebar.Entry {
	states := m.Registry.States()
	entries := make([]devicebar.Entry, len(states))
	for i, s := range states {
		entries[i] = devicebar.Entry{
			Name:       s.Info.Name,
			Model:      s.Info.Model,
			Address:    s.Address(),
			AttachedAt: s.AttachedAt,
		}
	}
	return entries
}

// statusLine shows the last error, then the last informational message, then
// a key hint.
func (m Model) statusLine() string {
	s := styles.T().S()
	switch {
	case m.ErrorMsg != "":
		return s.Error.Render(render.Fit(render.Sanitize(m.ErrorMsg), m.Width))
	case m.InfoMsg != "":
		return s.Warning.Render(render.Fit(m.InfoMsg, m.Width))
	default:
		return s.Subtle.Render(render.Fit(statusHint, m.Width))
	}
}
