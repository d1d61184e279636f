// Package castbar draws the controls for the selected receiver: transport
// state, progress, volume and status text.
package castbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/castwave/internal/icons"
	"github.com/llehouerou/castwave/internal/progress"
	"github.com/llehouerou/castwave/internal/selection"
	"github.com/llehouerou/castwave/internal/ui"
	"github.com/llehouerou/castwave/internal/ui/render"
	"github.com/llehouerou/castwave/internal/ui/styles"
)

// Height is the rendered height: two content rows plus the border.
const Height = ui.BorderHeight + 2

const noDuration = "--:--:--"

// Model is a selection.Sink that remembers the last render request.
type Model struct {
	snap   selection.Snapshot
	index  int
	active bool
	volume int
}

var _ selection.Sink = (*Model)(nil)

// New returns a bar showing the disabled baseline.
func New() *Model {
	return &Model{index: -1}
}

func (m *Model) RenderSnapshot(index int, s selection.Snapshot) {
	m.snap = s
	m.index = index
	m.active = true
	// A nil volume means a local change is in flight; keep what we show.
	if s.Volume != nil {
		m.volume = *s.Volume
	}
}

func (m *Model) RenderDisabledBaseline() {
	m.snap = selection.Snapshot{}
	m.index = -1
	m.active = false
	m.volume = 0
}

// ShowVolume displays a locally requested volume before the receiver confirms it.
func (m *Model) ShowVolume(percent int) {
	m.volume = max(0, min(100, percent))
}

// Snapshot returns the last snapshot and whether a receiver is shown.
func (m *Model) Snapshot() (selection.Snapshot, bool) {
	return m.snap, m.active
}

// Index returns the position of the shown receiver, or -1.
func (m *Model) Index() int {
	return m.index
}

// Volume returns the volume on display.
func (m *Model) Volume() int {
	return m.volume
}

// View renders the bar at the given width.
func (m *Model) View(width int) string {
	inner := max(width-6, 10)

	var top, bottom string
	if m.active {
		top = m.headline(inner)
		bottom = m.progressLine(inner)
	} else {
		disabled := styles.T().S().Disabled
		top = disabled.Render("No receiver selected")
		bottom = disabled.Render(icons.Play() + "  " + noDuration + "  " + strings.Repeat("─", max(inner-24, ui.MinProgressBarWidth)))
	}

	return styles.PanelStyle(m.active).
		Padding(0, 2).
		Width(width - 2).
		Render(top + "\n" + bottom)
}

func (m *Model) headline(width int) string {
	s := styles.T().S()

	var status string
	switch {
	case m.snap.Live:
		status = s.Live.Render(icons.Live() + " " + selection.LiveLabel)
	case m.snap.PlayIcon == selection.IconPause:
		status = s.Success.Render(icons.Play())
	default:
		status = s.Muted.Render(icons.Pause())
	}

	t := styles.T()
	name := styles.GradientText(render.Sanitize(m.snap.Name), t.Primary, t.Secondary)
	left := status + "  " + name
	if m.snap.Title != "" {
		left += s.Muted.Render(" · " + render.Sanitize(m.snap.Title))
	}

	right := s.Subtle.Render(render.Sanitize(m.snap.StatusText))
	rightWidth := min(lipgloss.Width(right), width/3)
	right = render.Fit(right, rightWidth)
	left = render.Fit(left, width-rightWidth-1)
	return render.Row(left, right, width)
}

func (m *Model) progressLine(width int) string {
	s := styles.T().S()

	elapsed := m.snap.ProgressLabel
	if elapsed == "" {
		elapsed = progress.Format(0)
	}
	total := noDuration
	if m.snap.SliderMax > 0 {
		total = progress.Format(m.snap.SliderMax)
	}

	vol := s.Base.Foreground(styles.T().Secondary).
		Render(fmt.Sprintf("%s %3d%%", icons.Volume(m.volume), m.volume))
	if m.snap.Muted {
		vol = s.Muted.Render(icons.Volume(0) + " muted")
	}

	var elapsedStyled string
	if m.snap.Live {
		elapsedStyled = s.Live.Render(elapsed)
		total = ""
	} else {
		elapsedStyled = s.Base.Render(elapsed)
	}

	fixed := lipgloss.Width(elapsed) + lipgloss.Width(total) + lipgloss.Width(vol) + 8
	bar := m.bar(max(width-fixed, ui.MinProgressBarWidth))

	line := elapsedStyled + "  " + bar
	if total != "" {
		line += "  " + s.Muted.Render(total)
	}
	return render.Row(line, vol, width)
}

func (m *Model) bar(width int) string {
	s := styles.T().S()
	if !m.snap.SeekEnabled || m.snap.SliderMax <= 0 {
		return s.Disabled.Render(strings.Repeat("─", width))
	}
	ratio := float64(m.snap.SliderValue) / float64(m.snap.SliderMax)
	filled := max(0, min(int(float64(width)*ratio), width))
	t := styles.T()
	return styles.GradientFill("━", filled, width, t.Primary, t.Secondary) +
		s.Subtle.Render(strings.Repeat("─", width-filled))
}
