// Package storage persists maps and best run times for the ranking server.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/vovakirdan/tilejump/internal/level"
)

var (
	// ErrNotFound is returned when a map id has no stored map.
	ErrNotFound = errors.New("storage: map not found")
	// ErrMapName is returned for an empty map name.
	ErrMapName = errors.New("storage: map name is required")
	// ErrDuplicateName is returned when another map already uses the name.
	ErrDuplicateName = errors.New("storage: map name already taken")
	// ErrUnknownDriver is returned by OpenDriver for unsupported drivers.
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// MapInfo is the listing view of a stored map.
type MapInfo struct {
	ID         string
	Name       string
	Author     string
	Difficulty int
	Levels     int
	Plays      int
	CreatedAt  time.Time
}

// Ranking is one user's best time on a map.
type Ranking struct {
	User      string
	Time      int64 // ms
	UpdatedAt time.Time
}

// Store is the persistence used by the ranking service.
type Store interface {
	// SaveMap inserts or replaces a map and returns its id. A map without an
	// id gets one derived from its name.
	SaveMap(ctx context.Context, d level.Data) (string, error)
	Map(ctx context.Context, id string) (level.Data, error)
	ListMaps(ctx context.Context) ([]MapInfo, error)
	IncrementPlays(ctx context.Context, id string) error

	// BestTime returns the stored best time of user on a map.
	BestTime(ctx context.Context, mapID, user string) (int64, bool, error)
	// SubmitTime stores ms as the user's time if it beats the stored one.
	// It reports whether the stored time changed.
	SubmitTime(ctx context.Context, mapID, user string, ms int64) (bool, error)
	// Rankings returns the best times on a map, fastest first.
	Rankings(ctx context.Context, mapID string, limit int) ([]Ranking, error)

	Close() error
}

// Drivers accepted by OpenDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenDriver opens the store for driver. For sqlite dsn is a file path; for
// postgres it is a connection string.
func OpenDriver(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Slug turns a map name into an id: lower case letters and digits with
// single dashes between words.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
