package level

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds matches every *OutOfBoundsError.
	ErrOutOfBounds = errors.New("level: tile out of bounds")

	// ErrNoActiveLevel is returned when the active index does not name a level.
	ErrNoActiveLevel = errors.New("level: active level is not defined")

	// ErrMissingRow matches every *MissingRowError.
	ErrMissingRow = errors.New("level: no row for active level")

	// ErrNoLevels is returned when an operation would leave the map without levels.
	ErrNoLevels = errors.New("level: map has no levels")

	// ErrNoSpawn is returned when the active level has no spawn coordinate.
	ErrNoSpawn = errors.New("level: no spawn for level")

	// ErrUnknownBackground is returned for background scenes that are not known.
	ErrUnknownBackground = errors.New("level: unknown background scene")

	// ErrUnknownTheme is returned for ground themes that are not known.
	ErrUnknownTheme = errors.New("level: unknown ground theme")

	// ErrMalformed is returned when imported level data is not rectangular.
	ErrMalformed = errors.New("level: malformed level data")
)

// OutOfBoundsError reports a tile access outside the level grid.
type OutOfBoundsError struct {
	TX, TY        int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("level: tile out of bounds with tx: %d ty: %d (grid %dx%d)", e.TX, e.TY, e.Width, e.Height)
}

// Is lets errors.Is match ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// MissingRowError reports an active level that is shorter than the map height.
type MissingRowError struct {
	Level int
	TY    int
}

func (e *MissingRowError) Error() string {
	return fmt.Sprintf("level: no row for active level %d under ty: %d", e.Level, e.TY)
}

// Is lets errors.Is match ErrMissingRow.
func (e *MissingRowError) Is(target error) bool {
	return target == ErrMissingRow
}

// ValidationError describes why a map cannot be published.
type ValidationError struct {
	Code    string
	Level   int
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] level %d: %s", e.Code, e.Level, e.Message)
}
