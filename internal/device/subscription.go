package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

const eventBufferSize = 32

// ErrClosed is returned when closing a subscription that is already closed.
var ErrClosed = errors.New("subscription already closed")

// Kind selects which events a subscription receives.
type Kind int

const (
	KindStatus Kind = iota // MediaStatus and CastStatus
	KindConnection
)

func kindOf(e Event) Kind {
	if _, ok := e.(ConnectionStatus); ok {
		return KindConnection
	}
	return KindStatus
}

// Subscription delivers events of one kind in the order they were published.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	kind    Kind
	eventCh chan Event
	doneCh  chan struct{}
	mu      sync.Mutex
	closed  bool
	detach  func(*Subscription)
}

func newSubscription(kind Kind, detach func(*Subscription)) *Subscription {
	s := &Subscription{
		kind:    kind,
		eventCh: make(chan Event, eventBufferSize),
		doneCh:  make(chan struct{}),
		detach:  detach,
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// Close unregisters the subscription. Closing twice returns ErrClosed.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	close(s.doneCh)
	s.mu.Unlock()

	if s.detach != nil {
		s.detach(s)
	}
	return nil
}

// send delivers e and reports whether it was dropped. Status events are
// dropped when the buffer is full; connection events wait for room until the
// subscription is closed.
func (s *Subscription) send(e Event) (dropped bool) {
	select {
	case <-s.doneCh:
		return false
	default:
	}
	if s.kind == KindConnection {
		select {
		case s.eventCh <- e:
		case <-s.doneCh:
		}
		return false
	}
	select {
	case s.eventCh <- e:
		return false
	default:
		return true
	}
}

// Broker fans published events out to subscriptions. Handle implementations
// embed one.
type Broker struct {
	// Log receives a warning for every dropped status event. The zero value
	// discards.
	Log zerolog.Logger

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscribe registers a new subscription for kind.
func (b *Broker) Subscribe(kind Kind) *Subscription {
	s := newSubscription(kind, b.remove)
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[*Subscription]struct{})
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish delivers e to every subscription of the matching kind.
func (b *Broker) Publish(e Event) {
	kind := kindOf(e)
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		if s.kind == kind && s.send(e) {
			b.Log.Warn().Str("event", fmt.Sprintf("%T", e)).Msg("subscriber buffer full, event dropped")
		}
	}
}

// CloseAll closes every remaining subscription.
func (b *Broker) CloseAll() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()
	for _, s := range subs {
		_ = s.Close()
	}
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}
