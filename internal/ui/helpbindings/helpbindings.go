// Package helpbindings provides a scrollable overlay listing key bindings.
package helpbindings

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/castwave/internal/keymap"
	"github.com/llehouerou/castwave/internal/ui"
	"github.com/llehouerou/castwave/internal/ui/styles"
)

// CloseMsg signals the help overlay should close.
type CloseMsg struct{}

// categoryOrder defines the display order of binding categories.
var categoryOrder = []string{"global", "playback", "volume", "url"}

var categoryLabels = map[string]string{
	"global":   "Global",
	"playback": "Playback",
	"volume":   "Volume",
	"url":      "URL Field",
}

// Model holds the state for the help overlay.
type Model struct {
	ui.Frame
	bindings     []keymap.Binding
	scrollOffset int
}

// New creates a help model listing every binding category.
func New() Model {
	var m Model
	for _, ctx := range categoryOrder {
		m.bindings = append(m.bindings, keymap.ByContext(ctx)...)
	}
	m.bindings = append(m.bindings, keymap.Binding{
		Keys:        []string{"1-9"},
		Description: "Select receiver by position",
		Context:     "global",
	})
	return m
}

// Update handles keys while the overlay is shown.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "?", "esc", "q":
		return func() tea.Msg { return CloseMsg{} }
	case "j", "down":
		if m.scrollOffset < m.maxScroll() {
			m.scrollOffset++
		}
	case "k", "up":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
	}
	return nil
}

// View renders the visible part of the binding list inside a border.
func (m Model) View() string {
	if m.Empty() {
		return ""
	}

	lines := m.lines()
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}

	start := min(m.scrollOffset, len(lines))
	end := min(start+m.visibleHeight(), len(lines))

	var sb strings.Builder
	sb.WriteString(styles.T().S().Title.Render("Key bindings"))
	sb.WriteString("\n\n")
	for _, line := range lines[start:end] {
		sb.WriteString(line)
		sb.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(line)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(styles.T().S().Muted.Render(m.footer()))

	t := styles.T()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Render(sb.String())
}

func (m Model) lines() []string {
	t := styles.T()
	keyStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	descStyle := t.S().Base
	headerStyle := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	separatorStyle := t.S().Subtle

	maxKeyWidth := 0
	for _, b := range m.bindings {
		maxKeyWidth = max(maxKeyWidth, len(keyLabel(b)))
	}

	var lines []string
	current := ""
	for _, b := range m.bindings {
		if b.Context != current {
			if current != "" {
				lines = append(lines, "")
			}
			label := categoryLabels[b.Context]
			if label == "" {
				label = b.Context
			}
			lines = append(lines,
				headerStyle.Render(label),
				separatorStyle.Render(strings.Repeat("─", maxKeyWidth+15)))
			current = b.Context
		}
		k := keyLabel(b)
		lines = append(lines, keyStyle.Render(k+strings.Repeat(" ", maxKeyWidth-len(k)))+
			"  "+descStyle.Render(b.Description))
	}
	return lines
}

// keyLabel joins a binding's keys, showing the space bar once by name.
func keyLabel(b keymap.Binding) string {
	keys := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		if k == " " {
			continue
		}
		keys = append(keys, k)
	}
	return strings.Join(keys, ", ")
}

func (m Model) footer() string {
	if m.maxScroll() == 0 {
		return "?/esc close"
	}
	return "j/k scroll · ?/esc close"
}

func (m Model) visibleHeight() int {
	// title and footer, each with a blank line
	return max(m.InnerHeight()-4, 5)
}

func (m Model) maxScroll() int {
	return max(len(m.lines())-m.visibleHeight(), 0)
}
