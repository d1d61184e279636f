package notify

import "sync"

// Board remembers the last notification shown per receiver so that a
// reconnect replaces the "disconnected" notice instead of stacking on it.
type Board struct {
	n   Notifier
	mu  sync.Mutex
	ids map[string]uint32
}

// NewBoard wraps n. A nil n behaves like Disabled.
func NewBoard(n Notifier) *Board {
	if n == nil {
		n = Disabled()
	}
	return &Board{n: n, ids: make(map[string]uint32)}
}

// Post sends notif, replacing the receiver's previous notification.
func (b *Board) Post(notif Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if notif.Receiver != "" && notif.ReplacesID == 0 {
		notif.ReplacesID = b.ids[notif.Receiver]
	}
	id, err := b.n.Notify(notif)
	if err != nil {
		return err
	}
	if notif.Receiver != "" && id != 0 {
		b.ids[notif.Receiver] = id
	}
	return nil
}

// Dismiss closes whatever is still shown for address.
func (b *Board) Dismiss(address string) error {
	b.mu.Lock()
	id, ok := b.ids[address]
	delete(b.ids, address)
	b.mu.Unlock()
	if !ok {
		return nil
	}
	return b.n.Close(id)
}
