// Package device defines the contract between the reconciliation core and the
// receivers it controls: identity, the status events a receiver emits, and the
// control surface it exposes.
package device

import "context"

// Info identifies a receiver on the network.
type Info struct {
	Address string // host:port, the stable key
	Name    string
	Model   string
	UUID    string
}

// Handle controls one receiver and publishes its status events.
type Handle interface {
	Info() Info

	Play(ctx context.Context, url string) error
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	// SetVolume takes a fraction in [0, 1].
	SetVolume(ctx context.Context, fraction float64) error
	// RequestStatus asks the receiver to publish fresh media and cast status.
	RequestStatus(ctx context.Context) error

	// SubscribeStatus delivers MediaStatus and CastStatus events in arrival order.
	SubscribeStatus() *Subscription
	// SubscribeConnection delivers ConnectionStatus events.
	SubscribeConnection() *Subscription

	Close() error
}

// Service finds receivers and opens handles to them.
type Service interface {
	// Discover returns handles for every receiver found during the discovery window.
	Discover(ctx context.Context) ([]Handle, error)
	// Watch reports receivers that appear after the initial discovery.
	Watch(ctx context.Context) <-chan Info
	// Connect opens a handle to a single receiver.
	Connect(ctx context.Context, info Info) (Handle, error)
}
