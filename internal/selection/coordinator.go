// Package selection tracks which device is observed and renders it.
package selection

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/castwave/internal/debounce"
	"github.com/llehouerou/castwave/internal/roster"
)

// Coordinator owns the observed-device selection and the volume echo window
// scoped to it. Every device state keeps updating while unselected; only the
// selected one is rendered.
type Coordinator struct {
	reg      *roster.Registry
	sink     Sink
	gate     *debounce.Gate
	log      zerolog.Logger
	selected *roster.State
	// lastIndex is the index the selection was last rendered at; used to pick
	// a neighbour when the selected device leaves.
	lastIndex int
}

// New creates a coordinator with nothing selected.
func New(reg *roster.Registry, sink Sink, gate *debounce.Gate, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		reg:       reg,
		sink:      sink,
		gate:      gate,
		log:       log,
		lastIndex: -1,
	}
}

// Select observes the device at index and renders it in full. With an empty
// roster it renders the disabled baseline. An out-of-range index is ignored.
func (c *Coordinator) Select(index int) bool {
	if c.reg.Len() == 0 {
		c.clear()
		return false
	}
	s, ok := c.reg.Lookup(index)
	if !ok {
		return false
	}
	if s != c.selected {
		c.releaseWindow()
		c.log.Debug().Str("device", s.Address()).Int("index", index).Msg("selected")
	}
	c.selected = s
	c.render(s)
	return true
}

// Selected returns the observed device.
func (c *Coordinator) Selected() (*roster.State, bool) {
	if c.selected == nil || !c.selected.IsAttached() {
		return nil, false
	}
	return c.selected, true
}

// SelectedIndex returns the observed device's index, or -1.
func (c *Coordinator) SelectedIndex() int {
	s, ok := c.Selected()
	if !ok {
		return -1
	}
	idx, _ := s.Slot.Index()
	return idx
}

// IsSelected reports whether s is the observed device.
func (c *Coordinator) IsSelected(s *roster.State) bool {
	sel, ok := c.Selected()
	return ok && sel == s
}

// Render emits a snapshot for s if it is the observed device.
func (c *Coordinator) Render(s *roster.State) bool {
	if !c.IsSelected(s) {
		return false
	}
	c.render(s)
	return true
}

// Refresh re-renders the selection, or the baseline when nothing is selected.
func (c *Coordinator) Refresh() {
	if s, ok := c.Selected(); ok {
		c.render(s)
		return
	}
	c.clear()
}

// Attached is called after a device joined the roster. The first device to
// arrive in an empty selection becomes the observed one.
func (c *Coordinator) Attached(s *roster.State) {
	if _, ok := c.Selected(); ok {
		return
	}
	if idx, ok := s.Slot.Index(); ok {
		c.Select(idx)
	}
}

// Revalidate is called after a detach. A selection that is still attached is
// re-rendered at its new index; a selection that left falls back to the
// neighbouring index, or to the baseline when the roster is empty.
func (c *Coordinator) Revalidate() {
	if s, ok := c.Selected(); ok {
		c.render(s)
		return
	}
	c.releaseWindow()
	c.selected = nil
	if c.reg.Len() == 0 {
		c.clear()
		return
	}
	c.Select(min(max(c.lastIndex, 0), c.reg.Len()-1))
}

// ArmVolume is called before a volume command is sent to the observed device.
// It returns the echo window expiry command when a window was opened.
func (c *Coordinator) ArmVolume(percent int) tea.Cmd {
	cmd := c.gate.Admit(percent)
	if c.gate.Suppressed() && c.selected != nil {
		c.selected.VolumeEchoSuppressed = true
	}
	return cmd
}

// ExpireVolume closes the echo window for gen. The next echo renders normally.
func (c *Coordinator) ExpireVolume(gen int) {
	if !c.gate.Expire(gen) {
		return
	}
	if c.selected != nil {
		c.selected.VolumeEchoSuppressed = false
	}
}

// VolumeSuppressed reports whether the observed device's echo window is open.
func (c *Coordinator) VolumeSuppressed() bool { return c.gate.Suppressed() }

func (c *Coordinator) releaseWindow() {
	c.gate.Disarm()
	if c.selected != nil {
		c.selected.VolumeEchoSuppressed = false
	}
}

func (c *Coordinator) render(s *roster.State) {
	idx, ok := s.Slot.Index()
	if !ok {
		return
	}
	c.lastIndex = idx
	c.sink.RenderSnapshot(idx, Build(s, c.gate.Suppressed()))
}

func (c *Coordinator) clear() {
	c.releaseWindow()
	c.selected = nil
	c.lastIndex = -1
	c.sink.RenderDisabledBaseline()
}
