// Package tile defines the grid cell of a level and the type code bands
// that decide how the simulation treats it.
package tile

import "fmt"

// Type is the integer code stored in a level grid.
type Type int

// Special type codes.
const (
	Empty         Type = 0
	Spawn         Type = 420
	Finish        Type = 421
	Bounce        Type = 777
	InvisibleWall Type = 999
)

// Code bands. Obstacles are solid and rendered, objects are decoration only.
const (
	ObstacleMin Type = 1
	ObstacleMax Type = 124
	ObjectMin   Type = 125
	ObjectMax   Type = 153
)

// IsObstacle reports whether the type is solid for collision.
func (t Type) IsObstacle() bool {
	return (t >= ObstacleMin && t <= ObstacleMax) || t == InvisibleWall
}

// IsBounce reports whether the type is a bounce pad.
func (t Type) IsBounce() bool {
	return t == Bounce
}

// IsFinish reports whether the type is the level finish flag.
func (t Type) IsFinish() bool {
	return t == Finish
}

// IsSpawn reports whether the type marks the level spawn.
func (t Type) IsSpawn() bool {
	return t == Spawn
}

// IsBoundary reports whether the type is the invisible boundary wall.
func (t Type) IsBoundary() bool {
	return t == InvisibleWall
}

// IsObject reports whether the type is a non-solid decoration.
func (t Type) IsObject() bool {
	return t >= ObjectMin && t <= ObjectMax
}

// Valid reports whether the code is a legal type code.
func (t Type) Valid() bool {
	return t >= 0
}

// String returns a short name for the band the type belongs to.
func (t Type) String() string {
	switch {
	case t == Empty:
		return "empty"
	case t == Spawn:
		return "spawn"
	case t == Finish:
		return "finish"
	case t == Bounce:
		return "bounce"
	case t == InvisibleWall:
		return "wall"
	case t.IsObstacle():
		return fmt.Sprintf("obstacle(%d)", int(t))
	case t.IsObject():
		return fmt.Sprintf("object(%d)", int(t))
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// InvalidTypeError is returned when a negative type code is assigned.
type InvalidTypeError struct {
	Code int
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("tile: invalid type code %d", e.Code)
}

// Tile is one cell of a level grid.
type Tile struct {
	TX, TY int
	Type   Type
}

// New creates a tile at grid position (tx, ty).
func New(tx, ty int, t Type) Tile {
	return Tile{TX: tx, TY: ty, Type: t}
}

// SetType replaces the tile type. Negative codes are rejected.
func (t *Tile) SetType(code int) error {
	if code < 0 {
		return InvalidTypeError{Code: code}
	}
	t.Type = Type(code)
	return nil
}

// IsObstacle reports whether the tile is solid.
func (t Tile) IsObstacle() bool { return t.Type.IsObstacle() }

// IsBounce reports whether the tile is a bounce pad.
func (t Tile) IsBounce() bool { return t.Type.IsBounce() }

// IsFinish reports whether the tile is the finish flag.
func (t Tile) IsFinish() bool { return t.Type.IsFinish() }

// IsSpawn reports whether the tile is the spawn marker.
func (t Tile) IsSpawn() bool { return t.Type.IsSpawn() }

// SamePosition reports whether two tiles occupy the same grid cell.
func (t Tile) SamePosition(o Tile) bool {
	return t.TX == o.TX && t.TY == o.TY
}

// Theme names a ground tile set.
type Theme string

// Ground themes.
const (
	ThemeSpring    Theme = "spring"
	ThemeDesert    Theme = "desert"
	ThemeFactory   Theme = "factory"
	ThemeGraveyard Theme = "graveyard"
	ThemeScifi     Theme = "scifi"
	ThemeWinter    Theme = "winter"
	ThemeInvisible Theme = "invis"
)

var themeGround = map[Theme]Type{
	ThemeSpring:    1,
	ThemeDesert:    21,
	ThemeFactory:   39,
	ThemeGraveyard: 69,
	ThemeScifi:     85,
	ThemeWinter:    108,
	ThemeInvisible: InvisibleWall,
}

// GroundFor returns the ground tile type of a theme.
func GroundFor(theme Theme) (Type, bool) {
	t, ok := themeGround[theme]
	return t, ok
}
