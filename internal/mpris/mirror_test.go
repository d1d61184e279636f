package mpris

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/castwave/internal/selection"
)

func TestMirror_TracksRenders(t *testing.T) {
	m := NewMirror()

	_, ok := m.Current()
	assert.False(t, ok)

	m.RenderSnapshot(1, selection.Snapshot{Name: "Kitchen", SliderValue: 30})
	snap, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, "Kitchen", snap.Name)

	m.RenderDisabledBaseline()
	snap, ok = m.Current()
	assert.False(t, ok)
	assert.Empty(t, snap.Name)
}
