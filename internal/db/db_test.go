package db

import (
	"database/sql"
	"errors"
	"testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Memory)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	_, err = db.Exec(`CREATE TABLE urls (url TEXT PRIMARY KEY)`)
	if err != nil {
		db.Close()
		t.Fatalf("failed to create table: %v", err)
	}

	return db
}

func countURLs(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM urls`).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count
}

func TestWithTx_Commits(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := WithTx(db, func(tx *sql.Tx) error {
		for _, u := range []string{"http://a/1.mp4", "http://a/2.mp4"} {
			if _, err := tx.Exec(`INSERT INTO urls (url) VALUES (?)`, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if n := countURLs(t, db); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	abort := errors.New("abort")
	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO urls (url) VALUES (?)`, "http://a/1.mp4"); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("WithTx should return the error: got %v, want %v", err, abort)
	}
	if n := countURLs(t, db); n != 0 {
		t.Errorf("count = %d, want 0 (rolled back)", n)
	}
}

func TestWithTx_ConstraintViolationRollsBackEarlierWrites(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO urls (url) VALUES (?)`, "http://a/1.mp4"); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO urls (url) VALUES (?)`, "http://a/1.mp4")
		return err
	})
	if err == nil {
		t.Fatal("duplicate insert should fail")
	}
	if n := countURLs(t, db); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   sql.NullString
		want string
	}{
		{"valid", sql.NullString{String: "Kitchen", Valid: true}, "Kitchen"},
		{"invalid", sql.NullString{String: "Kitchen"}, ""},
		{"empty", sql.NullString{Valid: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

var testSteps = []string{
	`CREATE TABLE receivers (address TEXT PRIMARY KEY)`,
	`ALTER TABLE receivers ADD COLUMN name TEXT`,
}

func schemaVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var v int
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		t.Fatalf("read version: %v", err)
	}
	return v
}

func TestMigrate_AppliesPendingStepsOnce(t *testing.T) {
	db, err := Open(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, testSteps[:1]); err != nil {
		t.Fatalf("Migrate v1: %v", err)
	}
	if v := schemaVersion(t, db); v != 1 {
		t.Fatalf("version = %d, want 1", v)
	}

	// rerunning must not re-create the table
	if err := Migrate(db, testSteps); err != nil {
		t.Fatalf("Migrate v2: %v", err)
	}
	if err := Migrate(db, testSteps); err != nil {
		t.Fatalf("Migrate again: %v", err)
	}
	if v := schemaVersion(t, db); v != 2 {
		t.Errorf("version = %d, want 2", v)
	}
	if _, err := db.Exec(`INSERT INTO receivers (address, name) VALUES ('10.0.0.5', 'Kitchen')`); err != nil {
		t.Errorf("v2 column missing: %v", err)
	}
}

func TestMigrate_FailedStepLeavesVersion(t *testing.T) {
	db, err := Open(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, []string{testSteps[0], `NOT SQL`}); err == nil {
		t.Fatal("broken step should fail")
	}
	if v := schemaVersion(t, db); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db, err := Open(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, testSteps); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Migrate(db, testSteps[:1]); err == nil {
		t.Error("older build should refuse a newer schema")
	}
}
