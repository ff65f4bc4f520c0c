package runhistory

import _ "github.com/jackc/pgx/v5/stdlib"

var postgresDialect = dialect{
	driver:   "pgx",
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
            seq BIGSERIAL PRIMARY KEY,
            run_id TEXT NOT NULL,
            tariff TEXT NOT NULL,
            mode TEXT NOT NULL,
            started_at BIGINT NOT NULL,
            failed BOOLEAN NOT NULL,
            payload JSONB NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS runs_run_id ON runs(run_id)`,
	},
}

// NewPostgresStore connects to dsn and ensures schema.
func NewPostgresStore(dsn string, capacity int) (*SQLStore, error) {
	return open(postgresDialect, dsn, capacity)
}
