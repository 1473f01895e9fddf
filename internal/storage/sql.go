package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/tilejump/internal/level"
)

// dialect holds what differs between the SQL backends.
type dialect struct {
	name   string
	schema string
	// positional rewrites ? placeholders for drivers that number them.
	positional bool
}

// sqlStore implements Store on database/sql for every dialect.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func newSQLStore(db *sql.DB, d dialect) (*sqlStore, error) {
	s := &sqlStore{db: db, d: d}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: %s migration failed: %w", d.name, err)
	}
	return s, nil
}

func (s *sqlStore) migrate() error {
	_, err := s.db.Exec(s.d.schema)
	return err
}

// q rebinds a query written with ? placeholders.
func (s *sqlStore) q(query string) string {
	if !s.d.positional {
		return query
	}
	return rebind(query)
}

// rebind replaces each ? with $1, $2, ... in order.
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *sqlStore) SaveMap(ctx context.Context, d level.Data) (string, error) {
	name := strings.TrimSpace(d.Meta.Name)
	if name == "" {
		return "", ErrMapName
	}
	id := d.Meta.ID
	if id == "" {
		id = Slug(name)
	}
	if id == "" {
		return "", fmt.Errorf("%w: name %q gives no id", ErrMapName, name)
	}

	var other string
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT id FROM maps WHERE name = ? AND id <> ?"), name, id,
	).Scan(&other)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %q is map %s", ErrDuplicateName, name, other)
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("storage: cannot check map name: %w", err)
	}

	d.Meta.ID = id
	d.Meta.Name = name
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode map: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO maps (id, name, author, difficulty, levels, data)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			author = excluded.author,
			difficulty = excluded.difficulty,
			levels = excluded.levels,
			data = excluded.data`),
		id, name, d.Meta.Author, d.Meta.Difficulty, len(d.Levels), string(data),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save map: %w", err)
	}
	return id, nil
}

func (s *sqlStore) Map(ctx context.Context, id string) (level.Data, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.q("SELECT data FROM maps WHERE id = ?"), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return level.Data{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return level.Data{}, fmt.Errorf("storage: cannot query map: %w", err)
	}
	var d level.Data
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return level.Data{}, fmt.Errorf("storage: cannot decode map %q: %w", id, err)
	}
	return d, nil
}

func (s *sqlStore) ListMaps(ctx context.Context) ([]MapInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, author, difficulty, levels, plays, created_at
		 FROM maps
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query maps: %w", err)
	}
	defer rows.Close()

	var maps []MapInfo
	for rows.Next() {
		var m MapInfo
		var createdAt any
		if err := rows.Scan(&m.ID, &m.Name, &m.Author, &m.Difficulty, &m.Levels, &m.Plays, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return maps, nil
}

func (s *sqlStore) IncrementPlays(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q("UPDATE maps SET plays = plays + 1 WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("storage: cannot count play: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot count play: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

func (s *sqlStore) BestTime(ctx context.Context, mapID, user string) (int64, bool, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx,
		s.q("SELECT time_ms FROM best_times WHERE map_id = ? AND user_name = ?"), mapID, user,
	).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best time: %w", err)
	}
	return ms, true, nil
}

func (s *sqlStore) SubmitTime(ctx context.Context, mapID, user string, ms int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO best_times (map_id, user_name, time_ms, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (map_id, user_name) DO UPDATE SET
			time_ms = excluded.time_ms,
			updated_at = excluded.updated_at
		 WHERE excluded.time_ms < best_times.time_ms`),
		mapID, user, ms, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot save time: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot save time: %w", err)
	}
	return n > 0, nil
}

func (s *sqlStore) Rankings(ctx context.Context, mapID string, limit int) ([]Ranking, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT user_name, time_ms, updated_at
		 FROM best_times
		 WHERE map_id = ?
		 ORDER BY time_ms ASC, updated_at ASC
		 LIMIT ?`),
		mapID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query rankings: %w", err)
	}
	defer rows.Close()

	var out []Ranking
	for rows.Next() {
		var r Ranking
		var updatedAt any
		if err := rows.Scan(&r.User, &r.Time, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.UpdatedAt = parseTime(updatedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// parseTime handles drivers that return DATETIME columns as text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999 -0700 MST", "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
