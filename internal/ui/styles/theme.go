package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the castwave palette and the styles built from it.
type Theme struct {
	Primary   lipgloss.Color // accent: selected receiver, progress bar, focused border
	Secondary lipgloss.Color // volume, gradient end

	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	BgSelected lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color // errors and the LIVE badge
	Warning lipgloss.Color

	styles *Styles
}

// Styles are the text styles the views share.
type Styles struct {
	Base     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Disabled lipgloss.Style
	Live     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
}

// DefaultAccent is the accent used when none is configured.
const DefaultAccent = "#a78bfa"

var current = newTheme(DefaultAccent)

func newTheme(accent lipgloss.Color) *Theme {
	return &Theme{
		Primary:     accent,
		Secondary:   "#f1a208",
		FgBase:      "#c0c0c0",
		FgMuted:     "#808080",
		FgSubtle:    "#585858",
		BgSelected:  "#303030",
		Border:      "#585858",
		BorderFocus: accent,
		Success:     "#42b883",
		Error:       "#ff5555",
		Warning:     "#f1a208",
	}
}

// T returns the active theme.
func T() *Theme {
	return current
}

// SetAccent switches the accent color. Empty restores the default.
// Call it before the first render.
func SetAccent(hex string) error {
	if hex == "" {
		current = newTheme(DefaultAccent)
		return nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("accent %q: %w", hex, err)
	}
	current = newTheme(lipgloss.Color(c.Hex()))
	return nil
}

// S returns the styles built from t, building them on first use.
func (t *Theme) S() *Styles {
	if t.styles != nil {
		return t.styles
	}
	plain := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	t.styles = &Styles{
		Base:     plain(t.FgBase),
		Muted:    plain(t.FgMuted),
		Subtle:   plain(t.FgSubtle),
		Title:    plain(t.FgBase).Bold(true),
		Selected: plain(t.Primary).Background(t.BgSelected).Bold(true),
		Disabled: plain(t.FgSubtle),
		Live:     plain(t.Error).Bold(true),
		Success:  plain(t.Success),
		Error:    plain(t.Error),
		Warning:  plain(t.Warning),
	}
	return t.styles
}
