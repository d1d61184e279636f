package device

import (
	"context"
	"sync"
)

// Fake is an in-memory Handle for tests. It records every command and lets the
// test publish events as if the receiver had sent them.
type Fake struct {
	Broker

	info Info

	mu       sync.Mutex
	plays    []string
	volumes  []float64
	seeks    []float64
	calls    []string
	err      error
	closeErr error
}

// NewFake creates a fake receiver handle.
func NewFake(address, name string) *Fake {
	return &Fake{info: Info{Address: address, Name: name}}
}

func (f *Fake) Info() Info { return f.info }

func (f *Fake) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *Fake) Play(_ context.Context, url string) error {
	f.mu.Lock()
	f.plays = append(f.plays, url)
	f.mu.Unlock()
	return f.record("play")
}

func (f *Fake) Resume(context.Context) error { return f.record("resume") }
func (f *Fake) Pause(context.Context) error  { return f.record("pause") }
func (f *Fake) Stop(context.Context) error   { return f.record("stop") }

func (f *Fake) Seek(_ context.Context, seconds float64) error {
	f.mu.Lock()
	f.seeks = append(f.seeks, seconds)
	f.mu.Unlock()
	return f.record("seek")
}

func (f *Fake) SetVolume(_ context.Context, fraction float64) error {
	f.mu.Lock()
	f.volumes = append(f.volumes, fraction)
	f.mu.Unlock()
	return f.record("volume")
}

func (f *Fake) RequestStatus(context.Context) error { return f.record("status") }

func (f *Fake) SubscribeStatus() *Subscription { return f.Subscribe(KindStatus) }

func (f *Fake) SubscribeConnection() *Subscription { return f.Subscribe(KindConnection) }

func (f *Fake) Close() error {
	f.CloseAll()
	return f.closeErr
}

// SetError makes every subsequent command fail with err.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Calls returns the command names in the order they were issued.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Plays returns the URLs passed to Play.
func (f *Fake) Plays() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.plays...)
}

// Volumes returns the fractions passed to SetVolume.
func (f *Fake) Volumes() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.volumes...)
}

// Seeks returns the positions passed to Seek.
func (f *Fake) Seeks() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.seeks...)
}
