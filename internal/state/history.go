package state

import (
	"database/sql"
	"strings"

	"github.com/llehouerou/castwave/internal/db"
)

// MaxHistory is the number of URLs kept.
const MaxHistory = 50

// AddHistory records url as the most recently played and drops the oldest
// entries beyond MaxHistory.
func (s *Store) AddHistory(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return db.WithTx(s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO url_history (url, seq)
			VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM url_history))
			ON CONFLICT(url) DO UPDATE SET seq = excluded.seq
		`, url)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			DELETE FROM url_history WHERE url NOT IN (
				SELECT url FROM url_history ORDER BY seq DESC LIMIT ?
			)
		`, MaxHistory)
		return err
	})
}

// History returns played URLs, most recent first.
func (s *Store) History() ([]string, error) {
	rows, err := s.db.Query(`SELECT url FROM url_history ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
