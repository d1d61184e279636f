package roster

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/castwave/internal/device"
)

func attach(t *testing.T, r *Registry, address string) *State {
	t.Helper()
	h := device.NewFake(address, "dev "+address)
	s, err := r.Attach(h)
	require.NoError(t, err)
	s.Listen(h.SubscribeStatus())
	return s
}

func requireDense(t *testing.T, r *Registry) {
	t.Helper()
	for want, s := range r.States() {
		got, ok := s.Slot.Index()
		require.True(t, ok, "attached state %s has detached slot", s.Address())
		require.Equal(t, want, got, "index of %s", s.Address())
		found, ok := r.Lookup(want)
		require.True(t, ok)
		require.Same(t, s, found)
	}
	_, ok := r.Lookup(r.Len())
	require.False(t, ok)
}

func TestRegistry_AttachAssignsDenseIndices(t *testing.T) {
	r := NewRegistry()

	a := attach(t, r, "10.0.0.1:8009")
	b := attach(t, r, "10.0.0.2:8009")

	assert.Equal(t, Attached(0), a.Slot)
	assert.Equal(t, Attached(1), b.Slot)
	requireDense(t, r)
}

func TestRegistry_DetachRelabelsInOrder(t *testing.T) {
	r := NewRegistry()
	a := attach(t, r, "a:8009")
	b := attach(t, r, "b:8009")
	c := attach(t, r, "c:8009")

	got, err := r.Detach("a:8009")

	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, Detached(), a.Slot)
	assert.Equal(t, Attached(0), b.Slot)
	assert.Equal(t, Attached(1), c.Slot)
	requireDense(t, r)
}

func TestRegistry_DetachStopsClockAndResets(t *testing.T) {
	r := NewRegistry()
	s := attach(t, r, "a:8009")
	s.Playback = Playing
	s.Live = true
	s.Clock.Resync(50)
	s.Clock.Start()
	s.VolumeEchoSuppressed = true

	_, err := r.Detach("a:8009")

	require.NoError(t, err)
	assert.False(t, s.Clock.Running())
	assert.Equal(t, 0, s.Elapsed())
	assert.Equal(t, Idle, s.Playback)
	assert.False(t, s.Live)
	assert.False(t, s.VolumeEchoSuppressed)
}

func TestRegistry_DetachedStateReachableByAddress(t *testing.T) {
	r := NewRegistry()
	a := attach(t, r, "a:8009")
	attach(t, r, "b:8009")

	_, err := r.Detach("a:8009")
	require.NoError(t, err)

	got, ok := r.LookupByAddress("a:8009")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.False(t, got.IsAttached())
}

func TestRegistry_DetachUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Detach("nope:8009")
	assert.ErrorIs(t, err, ErrNotAttached)
}

func TestRegistry_DetachListenerFailureStillDetaches(t *testing.T) {
	r := NewRegistry()
	s := attach(t, r, "a:8009")
	attach(t, r, "b:8009")
	require.NoError(t, s.Listener().Close())

	_, err := r.Detach("a:8009")

	assert.ErrorIs(t, err, device.ErrClosed)
	assert.False(t, s.IsAttached())
	assert.Equal(t, 1, r.Len())
	requireDense(t, r)
}

func TestRegistry_ReattachSameAddressReplacesEntry(t *testing.T) {
	r := NewRegistry()
	old := attach(t, r, "a:8009")
	attach(t, r, "b:8009")

	fresh := attach(t, r, "a:8009")

	assert.False(t, old.IsAttached())
	assert.NotSame(t, old, fresh)
	assert.Equal(t, Attached(1), fresh.Slot)
	got, ok := r.LookupByAddress("a:8009")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	requireDense(t, r)
}

func TestRegistry_ResolveRejectsStaleOrigin(t *testing.T) {
	r := NewRegistry()
	a := attach(t, r, "a:8009")
	b := attach(t, r, "b:8009")

	_, err := r.Detach("a:8009")
	require.NoError(t, err)

	_, ok := r.Resolve(a)
	assert.False(t, ok, "detached origin must not resolve")

	got, ok := r.Resolve(b)
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestRegistry_ResolveRejectsForeignIndex(t *testing.T) {
	r := NewRegistry()
	attach(t, r, "a:8009")
	impostor := &State{Slot: Attached(0)}

	_, ok := r.Resolve(impostor)
	assert.False(t, ok)

	_, ok = r.Resolve(nil)
	assert.False(t, ok)
}

func TestRegistry_IndexDensityUnderRandomChurn(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	r := NewRegistry()
	live := map[string]bool{}

	for step := range 500 {
		addr := fmt.Sprintf("10.0.0.%d:8009", rng.IntN(12))
		if live[addr] && rng.IntN(2) == 0 {
			_, err := r.Detach(addr)
			require.NoError(t, err, "step %d", step)
			delete(live, addr)
		} else {
			h := device.NewFake(addr, addr)
			_, err := r.Attach(h)
			if err != nil && !errors.Is(err, device.ErrClosed) {
				require.NoError(t, err)
			}
			live[addr] = true
		}
		require.Equal(t, len(live), r.Len(), "step %d", step)
		requireDense(t, r)
	}
}
