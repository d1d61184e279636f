package state

// migrations are applied in order by db.Migrate; append, never edit.
var migrations = []string{
	// v1
	`CREATE TABLE selection_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		device_address TEXT NOT NULL,
		device_name TEXT,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE url_history (
		url TEXT PRIMARY KEY,
		seq INTEGER NOT NULL
	);
	CREATE INDEX idx_url_history_seq ON url_history(seq DESC);`,
}
