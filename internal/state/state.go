// Package state persists what castwave remembers between runs: the selected
// receiver and recently cast URLs.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/castwave/internal/db"
)

const (
	appName    = "castwave"
	dbFileName = "castwave.db"

	// Cycling through receivers with tab writes once it settles.
	selectionQuiet = 500 * time.Millisecond
)

// Store is the SQLite-backed Interface.
type Store struct {
	db        *sql.DB
	selection *deferredWrite
}

// Open opens the store under the XDG data directory.
func Open() (*Store, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the store at path; db.Memory gives a throwaway store.
func OpenPath(path string) (*Store, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, migrations); err != nil {
		conn.Close()
		return nil, err
	}
	s := &Store{db: conn}
	s.selection = newDeferredWrite(selectionQuiet, func(sel SelectionState) error {
		return saveSelection(conn, sel)
	})
	return s, nil
}

// Close writes any selection still waiting out its quiet period.
func (s *Store) Close() error {
	flushErr := s.selection.Flush()
	if err := s.db.Close(); err != nil {
		return err
	}
	return flushErr
}

func (s *Store) GetSelection() (*SelectionState, error) {
	return getSelection(s.db)
}

// SaveSelection queues sel; only the last one within the quiet period is written.
func (s *Store) SaveSelection(sel SelectionState) {
	s.selection.Queue(sel)
}
