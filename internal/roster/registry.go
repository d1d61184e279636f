package roster

import (
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/castwave/internal/device"
)

// ErrNotAttached is returned when detaching an address that holds no index.
var ErrNotAttached = errors.New("device not attached")

// Registry keeps attached devices in roster order. Index is a projection of
// that order; the address is the permanent identity.
type Registry struct {
	entries  []*State
	detached map[string]*State
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detached: make(map[string]*State),
		now:      time.Now,
	}
}

// Attach appends a device at the next dense index. If the address is already
// attached the old entry is detached first; the returned error is that
// detach's listener failure, and the new state is valid regardless.
func (r *Registry) Attach(h device.Handle) (*State, error) {
	info := h.Info()

	var err error
	if _, ok := r.indexOf(info.Address); ok {
		_, err = r.Detach(info.Address)
	}
	delete(r.detached, info.Address)

	s := &State{
		Info:       info,
		Handle:     h,
		Slot:       Attached(len(r.entries)),
		AttachedAt: r.now(),
	}
	r.entries = append(r.entries, s)
	return s, err
}

// Detach removes the device from the roster and relabels the rest 0..k-1 in
// their existing order. The detached state stays reachable by address.
//
// A failure to close the device's status listener is returned after the detach
// has completed.
func (r *Registry) Detach(address string) (*State, error) {
	i, ok := r.indexOf(address)
	if !ok {
		return nil, fmt.Errorf("%s: %w", address, ErrNotAttached)
	}
	s := r.entries[i]

	s.Slot = Detached()
	s.ResetPlayback()
	s.VolumeEchoSuppressed = false

	var err error
	if s.listener != nil {
		if cerr := s.listener.Close(); cerr != nil {
			err = fmt.Errorf("unregister status listener for %s: %w", address, cerr)
		}
	}

	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	for idx, e := range r.entries {
		e.Slot = Attached(idx)
	}
	r.detached[address] = s
	return s, err
}

// Lookup returns the attached device at index.
func (r *Registry) Lookup(index int) (*State, bool) {
	if index < 0 || index >= len(r.entries) {
		return nil, false
	}
	return r.entries[index], true
}

// LookupByAddress returns the device with this address, attached or detached.
func (r *Registry) LookupByAddress(address string) (*State, bool) {
	if i, ok := r.indexOf(address); ok {
		return r.entries[i], true
	}
	s, ok := r.detached[address]
	return s, ok
}

// Resolve maps an event origin to the state it may mutate. The origin's slot is
// read now, not when the event was produced: a detached origin, or an index
// that now belongs to another device, resolves to nothing.
func (r *Registry) Resolve(origin *State) (*State, bool) {
	if origin == nil {
		return nil, false
	}
	idx, ok := origin.Slot.Index()
	if !ok {
		return nil, false
	}
	s, ok := r.Lookup(idx)
	if !ok || s != origin {
		return nil, false
	}
	return s, true
}

// Len returns the number of attached devices.
func (r *Registry) Len() int { return len(r.entries) }

// States returns the attached devices in roster order.
func (r *Registry) States() []*State {
	return append([]*State(nil), r.entries...)
}

func (r *Registry) indexOf(address string) (int, bool) {
	for i, s := range r.entries {
		if s.Info.Address == address {
			return i, true
		}
	}
	return -1, false
}
