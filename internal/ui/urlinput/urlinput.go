// Package urlinput is the URL field used to cast media, with history recall.
package urlinput

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/castwave/internal/keymap"
	"github.com/llehouerou/castwave/internal/ui/styles"
)

// SubmitMsg is sent when the user confirms a URL.
type SubmitMsg struct {
	URL string
}

// CancelMsg is sent when the user leaves the field without casting.
type CancelMsg struct{}

func hintStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

// Model wraps a bubbles text input with a most-recent-first history.
type Model struct {
	input   textinput.Model
	keys    *keymap.Resolver
	history []string
	pos     int // -1 while editing the draft
	draft   string
}

// New creates an unfocused URL field.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "URL › "
	ti.Placeholder = "http://host/media.mp4"
	ti.CharLimit = 2048
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.T().Primary)
	return Model{input: ti, keys: keymap.URL(), pos: -1}
}

// SetHistory replaces the recallable URLs, most recent first.
func (m *Model) SetHistory(urls []string) {
	m.history = urls
	m.pos = -1
}

// Focus gives the field the keyboard.
func (m *Model) Focus() tea.Cmd {
	m.pos = -1
	return m.input.Focus()
}

// Blur releases the keyboard.
func (m *Model) Blur() {
	m.input.Blur()
}

// Focused reports whether the field has the keyboard.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// Value returns the trimmed field content.
func (m Model) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// SetValue replaces the field content.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// SetWidth sets the visible width of the field.
func (m *Model) SetWidth(w int) {
	m.input.Width = max(w-lipgloss.Width(m.input.Prompt)-1, 10)
}

// Update handles a message while the field is focused.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.keys.Resolve(key.String()) {
		case keymap.ActionSubmit:
			url := m.Value()
			m.Blur()
			return func() tea.Msg { return SubmitMsg{URL: url} }
		case keymap.ActionCancel:
			m.Blur()
			return func() tea.Msg { return CancelMsg{} }
		case keymap.ActionHistoryPrev:
			m.recall(1)
			return nil
		case keymap.ActionHistoryNext:
			m.recall(-1)
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// recall moves through history; dir 1 is older. Leaving the newest entry
// restores what was typed before recall started.
func (m *Model) recall(dir int) {
	if len(m.history) == 0 {
		return
	}
	if m.pos == -1 {
		m.draft = m.input.Value()
	}
	next := max(-1, min(m.pos+dir, len(m.history)-1))
	if next == m.pos {
		return
	}
	m.pos = next
	if m.pos == -1 {
		m.SetValue(m.draft)
		return
	}
	m.SetValue(m.history[m.pos])
}

// View renders the field and, when focused, a key hint.
func (m Model) View() string {
	view := m.input.View()
	if m.input.Focused() {
		view += "\n" + hintStyle().Render("Enter: cast  Esc: close  ↑/↓: history")
	}
	return view
}
