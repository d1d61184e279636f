package styles

import "github.com/charmbracelet/lipgloss"

// PanelStyle returns the bordered panel style. An active panel (a receiver is
// selected) gets the accent border.
func PanelStyle(active bool) lipgloss.Style {
	t := T()
	border := t.Border
	if active {
		border = t.BorderFocus
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border)
}
