package state

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/llehouerou/castwave/internal/db"
)

// SelectionState is the receiver selected when the program last ran.
type SelectionState struct {
	DeviceAddress string
	DeviceName    string
}

func getSelection(conn *sql.DB) (*SelectionState, error) {
	var sel SelectionState
	var name sql.NullString
	err := conn.QueryRow(`SELECT device_address, device_name FROM selection_state WHERE id = 1`).
		Scan(&sel.DeviceAddress, &name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil //nolint:nilnil // first run
	case err != nil:
		return nil, err
	}
	sel.DeviceName = db.Text(name)
	return &sel, nil
}

func saveSelection(conn *sql.DB, sel SelectionState) error {
	var name any
	if sel.DeviceName != "" {
		name = sel.DeviceName
	}
	_, err := conn.Exec(`
		INSERT INTO selection_state (id, device_address, device_name, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			device_address = excluded.device_address,
			device_name = excluded.device_name,
			updated_at = excluded.updated_at
	`, sel.DeviceAddress, name, time.Now().Unix())
	return err
}

// deferredWrite holds the latest value until quiet has passed without a
// newer one.
type deferredWrite struct {
	quiet time.Duration
	write func(SelectionState) error

	mu      sync.Mutex
	timer   *time.Timer
	pending *SelectionState
}

func newDeferredWrite(quiet time.Duration, write func(SelectionState) error) *deferredWrite {
	return &deferredWrite{quiet: quiet, write: write}
}

func (d *deferredWrite) Queue(sel SelectionState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &sel
	if d.timer == nil {
		d.timer = time.AfterFunc(d.quiet, func() { _ = d.Flush() })
		return
	}
	d.timer.Reset(d.quiet)
}

// Flush writes the pending value now, if any.
func (d *deferredWrite) Flush() error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	if pending == nil {
		return nil
	}
	return d.write(*pending)
}
