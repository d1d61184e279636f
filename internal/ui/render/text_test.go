package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "Now Casting", "Now Casting"},
		{"bell dropped", "Now\x07 Casting", "Now Casting"},
		{"line breaks become spaces", "Big Buck\nBunny\r\n", "Big Buck Bunny"},
		{"tab kept", "a\tb", "a\tb"},
		{"nbsp", "Living\u00a0Room", "Living Room"},
		{"invalid utf8", "Kit\xffchen", "Kitchen"},
		{"c1 control", "Den\u0085TV", "DenTV"},
		{"escape sequence neutralised", "\x1b[31mred", "[31mred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "Kitchen", 10, "Kitchen"},
		{"cut", "Living Room Speaker", 8, "Living …"},
		{"wide characters", "リビングルーム", 5, "リビ…"},
		{"sanitized first", "Den\nTV", 10, "Den TV"},
		{"zero width", "Kitchen", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("Label(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"cut", "hello world", 8, "hello w…"},
		{"empty", "", 10, ""},
		{"zero width", "Kitchen", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fit(tt.input, tt.width); got != tt.want {
				t.Errorf("Fit(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestFit_StyledInput(t *testing.T) {
	styled := "\x1b[1mLiving Room Speaker\x1b[0m"
	got := Fit(styled, 8)
	if w := lipgloss.Width(got); w != 8 {
		t.Errorf("width = %d, want 8 (%q)", w, got)
	}
	if !strings.Contains(got, "Living") {
		t.Errorf("Fit() = %q, should keep the visible prefix", got)
	}
}

func TestRow(t *testing.T) {
	if got := Row("Kitchen", "Playing", 20); lipgloss.Width(got) != 20 {
		t.Errorf("Row width = %d, want 20", lipgloss.Width(got))
	}
	got := Row("Kitchen", "Playing", 5)
	if got != "Kitchen Playing" {
		t.Errorf("overfull Row = %q, want a single space gap", got)
	}
}
