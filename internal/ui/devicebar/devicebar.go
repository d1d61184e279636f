// Package devicebar renders the receiver roster as numbered tabs with a
// detail line for the selected receiver.
package devicebar

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/castwave/internal/icons"
	"github.com/llehouerou/castwave/internal/ui/render"
	"github.com/llehouerou/castwave/internal/ui/styles"
)

const (
	// Height is the fixed height of the bar: tabs and detail line.
	Height = 2

	maxTabLabel = 24
)

// Entry is one attached receiver, in roster order.
type Entry struct {
	Name       string
	Model      string
	Address    string
	AttachedAt time.Time
}

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Render returns the bar for entries with selected highlighted (-1 for none).
// now is used for the relative connection time.
func Render(entries []Entry, selected, width int, now time.Time) string {
	if width < 20 {
		return ""
	}
	s := styles.T().S()

	if len(entries) == 0 {
		return s.Warning.Render(icons.Offline()+" No receivers connected") + "\n"
	}

	parts := make([]string, 0, len(entries))
	for i, e := range entries {
		label := render.Label(icons.FormatDevice(e.Name), maxTabLabel)
		key := ""
		if i < 9 {
			key = strconv.Itoa(i+1) + " "
		}
		if i == selected {
			parts = append(parts, s.Selected.Render(" "+key+label+" "))
			continue
		}
		parts = append(parts, " "+keyStyle.Render(key)+nameStyle.Render(label)+" ")
	}
	tabs := strings.Join(parts, separatorStyle.Render("│"))
	tabs = render.Fit(tabs, width)

	detail := ""
	if selected >= 0 && selected < len(entries) {
		detail = s.Muted.Render(render.Fit(Detail(entries[selected], now), width))
	}
	return tabs + "\n" + detail
}

// Detail describes a receiver: model, address and how long it has been connected.
func Detail(e Entry, now time.Time) string {
	var fields []string
	if e.Model != "" {
		fields = append(fields, render.Sanitize(e.Model))
	}
	fields = append(fields, e.Address)
	if !e.AttachedAt.IsZero() {
		fields = append(fields, "connected "+humanize.RelTime(e.AttachedAt, now, "ago", "from now"))
	}
	return strings.Join(fields, " · ")
}
