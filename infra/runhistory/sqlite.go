package runhistory

import _ "modernc.org/sqlite"

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT,
            tariff TEXT,
            mode TEXT,
            started_at INTEGER,
            failed INTEGER,
            payload TEXT
        )`,
		`CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at)`,
	},
}

// NewSQLiteStore opens or creates the database file and ensures schema.
func NewSQLiteStore(path string, capacity int) (*SQLStore, error) {
	return open(sqliteDialect, path, capacity)
}
