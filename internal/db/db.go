// Package db opens the SQLite store and applies its migrations.
package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

// Open opens the SQLite database at path with the pragmas castwave relies on.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != Memory {
		dsn += "?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == Memory {
		// each pooled connection would see its own empty database
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return conn, nil
}

// Migrate brings the schema up to len(steps). Step i moves version i to i+1
// and runs in its own transaction.
func Migrate(conn *sql.DB, steps []string) error {
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	var current int
	if err := conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return err
	}
	if current > len(steps) {
		return fmt.Errorf("database schema v%d is newer than this build (v%d)", current, len(steps))
	}
	for v := current; v < len(steps); v++ {
		err := WithTx(conn, func(tx *sql.Tx) error {
			if _, err := tx.Exec(steps[v]); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v+1)
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}

// WithTx runs fn in a transaction and commits only if fn succeeds.
func WithTx(conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// Text is the column's string, or "" for NULL.
func Text(n sql.NullString) string {
	if n.Valid {
		return n.String
	}
	return ""
}
