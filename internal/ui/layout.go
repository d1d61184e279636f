// Package ui holds layout pieces shared by the castwave views.
package ui

const (
	// BorderHeight is the rows a rounded panel border takes.
	BorderHeight = 2

	// MinProgressBarWidth keeps the seek bar visible on narrow terminals.
	MinProgressBarWidth = 5
)

// Frame is the area an overlay or panel may draw into.
type Frame struct {
	width, height int
}

// Resize records the terminal area available to the component.
func (f *Frame) Resize(width, height int) {
	f.width = max(width, 0)
	f.height = max(height, 0)
}

func (f Frame) Width() int  { return f.width }
func (f Frame) Height() int { return f.height }

// Empty reports whether nothing has been sized yet.
func (f Frame) Empty() bool {
	return f.width == 0 || f.height == 0
}

// InnerHeight is the height left inside a bordered panel.
func (f Frame) InnerHeight() int {
	return max(f.height-BorderHeight, 0)
}
