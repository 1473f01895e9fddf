package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		difficulty INTEGER NOT NULL DEFAULT 1,
		levels INTEGER NOT NULL DEFAULT 0,
		plays INTEGER NOT NULL DEFAULT 0,
		data JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS best_times (
		map_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		time_ms BIGINT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
		PRIMARY KEY (map_id, user_name)
	);
	CREATE INDEX IF NOT EXISTS idx_best_times_rank ON best_times(map_id, time_ms);
`

// OpenPostgres connects to PostgreSQL with connectionString and runs
// migrations.
func OpenPostgres(connectionString string) (Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s, err := newSQLStore(db, dialect{name: DriverPostgres, schema: postgresSchema, positional: true})
	if err != nil {
		return nil, err
	}
	return s, nil
}
