package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_FirstCommandArms(t *testing.T) {
	g := NewGate(0)

	cmd := g.Admit(50)

	assert.NotNil(t, cmd)
	assert.True(t, g.Suppressed())
	assert.Equal(t, DefaultWindow, g.Window())
}

func TestGate_CommandsInsideWindowDoNotRearm(t *testing.T) {
	g := NewGate(time.Second)
	g.Admit(40)

	assert.Nil(t, g.Admit(45))
	assert.Nil(t, g.Admit(47))
	assert.True(t, g.Expire(1))
	assert.False(t, g.Suppressed())
}

func TestGate_BoundaryValuesNeverArm(t *testing.T) {
	for _, pct := range []int{0, 100} {
		g := NewGate(time.Second)
		assert.Nil(t, g.Admit(pct))
		assert.False(t, g.Suppressed(), "percent %d", pct)
	}
}

func TestGate_StaleExpiryIgnored(t *testing.T) {
	g := NewGate(time.Second)
	g.Admit(10)
	g.Disarm()
	g.Admit(20)

	assert.False(t, g.Expire(1), "first window's expiry is stale")
	assert.True(t, g.Suppressed())
	assert.True(t, g.Expire(3))
}

func TestGate_DisarmIdempotent(t *testing.T) {
	g := NewGate(time.Second)
	g.Disarm()
	g.Disarm()
	assert.False(t, g.Suppressed())
}

func TestIsBoundary(t *testing.T) {
	assert.True(t, IsBoundary(0))
	assert.True(t, IsBoundary(100))
	assert.True(t, IsBoundary(-3))
	assert.False(t, IsBoundary(1))
	assert.False(t, IsBoundary(99))
}
