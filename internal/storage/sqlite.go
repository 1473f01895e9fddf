package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultSQLitePath is where the server keeps its database by default.
const DefaultSQLitePath = "~/.tilejump/tilejump.db"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		author TEXT NOT NULL DEFAULT '',
		difficulty INTEGER NOT NULL DEFAULT 1,
		levels INTEGER NOT NULL DEFAULT 0,
		plays INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS best_times (
		map_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		time_ms INTEGER NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (map_id, user_name)
	);
	CREATE INDEX IF NOT EXISTS idx_best_times_rank ON best_times(map_id, time_ms);
`

// OpenSQLite creates or opens a SQLite database at path. It creates the
// parent directories if needed and runs migrations.
func OpenSQLite(path string) (Store, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer; concurrent submissions would otherwise hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s, err := newSQLStore(db, dialect{name: DriverSQLite, schema: sqliteSchema})
	if err != nil {
		return nil, err
	}
	return s, nil
}
