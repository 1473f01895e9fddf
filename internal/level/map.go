// Package level implements the tile-grid map: an ordered sequence of levels
// with per-level spawns, shared metadata and play/editor navigation.
package level

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tilejump/internal/tile"
)

// Mode is the map browsing mode.
type Mode int

const (
	PlayMode Mode = iota
	EditorMode
)

func (m Mode) String() string {
	if m == EditorMode {
		return "editor"
	}
	return "play"
}

// Default map dimensions and physics.
const (
	DefaultWidth      = 128
	DefaultHeight     = 72
	DefaultTileWidth  = 30
	DefaultTileHeight = 30
	DefaultGravity    = 8.0
)

// Config holds the dimensions a new map starts with.
type Config struct {
	Width              int
	Height             int
	TileWidth          int
	TileHeight         int
	Gravity            float64
	AllowCustomGravity bool
}

// DefaultConfig returns the stock map configuration.
func DefaultConfig() Config {
	return Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		TileWidth:  DefaultTileWidth,
		TileHeight: DefaultTileHeight,
		Gravity:    DefaultGravity,
	}
}

// Point is a physical coordinate, in the same units as player positions.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Level is one tile grid, indexed [ty][tx].
type Level [][]tile.Tile

// Respawner is the part of a player that level navigation resets.
type Respawner interface {
	Respawn(m *Map) error
	SavePosition(force bool)
}

// Map owns the levels of a loaded map and the active level index.
type Map struct {
	ID         string
	Author     string
	Name       string
	Difficulty int

	Spawns           []Point
	BackgroundScenes []string

	width, height         int
	tileWidth, tileHeight int
	gravity               float64
	allowCustomGravity    bool

	levels []Level
	active int
	mode   Mode
}

// New creates an empty map. Call NewLevel or Import before reading tiles.
func New(cfg Config) *Map {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.TileWidth <= 0 {
		cfg.TileWidth = DefaultTileWidth
	}
	if cfg.TileHeight <= 0 {
		cfg.TileHeight = DefaultTileHeight
	}
	if cfg.Gravity == 0 {
		cfg.Gravity = DefaultGravity
	}
	return &Map{
		Difficulty:         1,
		width:              cfg.Width,
		height:             cfg.Height,
		tileWidth:          cfg.TileWidth,
		tileHeight:         cfg.TileHeight,
		gravity:            cfg.Gravity,
		allowCustomGravity: cfg.AllowCustomGravity,
	}
}

// Width returns the level width in tiles.
func (m *Map) Width() int { return m.width }

// Height returns the level height in tiles.
func (m *Map) Height() int { return m.height }

// TileWidth returns the physical width of one tile.
func (m *Map) TileWidth() int { return m.tileWidth }

// TileHeight returns the physical height of one tile.
func (m *Map) TileHeight() int { return m.tileHeight }

// PixelWidth returns width * tileWidth.
func (m *Map) PixelWidth() float64 { return float64(m.width * m.tileWidth) }

// PixelHeight returns height * tileHeight.
func (m *Map) PixelHeight() float64 { return float64(m.height * m.tileHeight) }

// Gravity returns the per-tick gravity applied to players.
func (m *Map) Gravity() float64 { return m.gravity }

// LevelCount returns the number of levels.
func (m *Map) LevelCount() int { return len(m.levels) }

// ActiveLevel returns the active level index.
func (m *Map) ActiveLevel() int { return m.active }

// Mode returns the current browsing mode.
func (m *Map) Mode() Mode { return m.mode }

// SetActiveLevel selects a level directly.
func (m *Map) SetActiveLevel(i int) error {
	if i < 0 || i >= len(m.levels) {
		return fmt.Errorf("%w: index %d of %d", ErrNoActiveLevel, i, len(m.levels))
	}
	m.active = i
	return nil
}

// Level returns the grid of level i.
func (m *Map) Level(i int) (Level, error) {
	if i < 0 || i >= len(m.levels) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoActiveLevel, i, len(m.levels))
	}
	return m.levels[i], nil
}

// IsLastLevel reports whether the active level is the final one.
func (m *Map) IsLastLevel() bool {
	return m.active == len(m.levels)-1
}

// ToggleEditorMode flips between play and editor mode.
func (m *Map) ToggleEditorMode() {
	if m.mode == EditorMode {
		m.mode = PlayMode
	} else {
		m.mode = EditorMode
	}
}

// SetMode sets the browsing mode.
func (m *Map) SetMode(mode Mode) { m.mode = mode }

// Background returns the background scene of the active level, if any.
func (m *Map) Background() string {
	if m.active < len(m.BackgroundScenes) {
		return m.BackgroundScenes[m.active]
	}
	return ""
}

// SetBackground sets the background scene of the active level.
func (m *Map) SetBackground(scene string) error {
	if !IsKnownBackground(scene) {
		return fmt.Errorf("%w: %q", ErrUnknownBackground, scene)
	}
	if m.active < 0 || m.active >= len(m.levels) {
		return ErrNoActiveLevel
	}
	for len(m.BackgroundScenes) <= m.active {
		m.BackgroundScenes = append(m.BackgroundScenes, "")
	}
	m.BackgroundScenes[m.active] = scene
	return nil
}

// borderedLevel builds a width x height grid with an invisible wall ring.
func (m *Map) borderedLevel() Level {
	lvl := make(Level, m.height)
	for y := range lvl {
		row := make([]tile.Tile, m.width)
		for x := range row {
			row[x] = tile.New(x, y, m.borderType(x, y))
		}
		lvl[y] = row
	}
	return lvl
}

func (m *Map) borderType(x, y int) tile.Type {
	if y == 0 || x == 0 || x == m.width-1 || y == m.height-1 {
		return tile.InvisibleWall
	}
	return tile.Empty
}

// NewLevel appends a bordered blank level and makes it active.
func (m *Map) NewLevel() int {
	m.levels = append(m.levels, m.borderedLevel())
	m.active = len(m.levels) - 1
	return m.active
}

// RemoveLevel deletes level i together with its spawn and background.
// Removing the only level fails with ErrNoLevels.
func (m *Map) RemoveLevel(i int) error {
	if i < 0 || i >= len(m.levels) {
		return fmt.Errorf("%w: index %d of %d", ErrNoActiveLevel, i, len(m.levels))
	}
	if len(m.levels) == 1 {
		return ErrNoLevels
	}

	m.levels = append(m.levels[:i], m.levels[i+1:]...)
	if i < len(m.Spawns) {
		m.Spawns = append(m.Spawns[:i], m.Spawns[i+1:]...)
	}
	if i < len(m.BackgroundScenes) {
		m.BackgroundScenes = append(m.BackgroundScenes[:i], m.BackgroundScenes[i+1:]...)
	}

	if i < m.active || m.active >= len(m.levels) {
		m.active--
	}
	return nil
}

// RemoveActiveLevel deletes the active level.
func (m *Map) RemoveActiveLevel() error {
	return m.RemoveLevel(m.active)
}

// NextLevel advances the active level. It clamps at the last level in play
// mode and wraps in editor mode. A non-nil player is respawned and its
// checkpoint moved to the new spawn.
func (m *Map) NextLevel(p Respawner) error {
	if len(m.levels) == 0 {
		return ErrNoLevels
	}
	m.active++
	if m.active >= len(m.levels) {
		if m.mode == EditorMode {
			m.active = 0
		} else {
			m.active = len(m.levels) - 1
		}
	}
	if p == nil {
		return nil
	}
	if err := p.Respawn(m); err != nil {
		return err
	}
	p.SavePosition(true)
	return nil
}

// PreviousLevel steps back one level. It clamps at 0 in play mode and wraps
// in editor mode. A non-nil player is respawned.
func (m *Map) PreviousLevel(p Respawner) error {
	if len(m.levels) == 0 {
		return ErrNoLevels
	}
	m.active--
	if m.active < 0 {
		if m.mode == EditorMode {
			m.active = len(m.levels) - 1
		} else {
			m.active = 0
		}
	}
	if p == nil {
		return nil
	}
	return p.Respawn(m)
}

// TileX converts a physical x coordinate to a tile column.
func (m *Map) TileX(x float64) int {
	return int(math.Floor(x / float64(m.tileWidth)))
}

// TileY converts a physical y coordinate to a tile row.
func (m *Map) TileY(y float64) int {
	return int(math.Floor(y / float64(m.tileHeight)))
}

// CoordX converts a tile column to its left edge.
func (m *Map) CoordX(tx int) float64 {
	return float64(tx * m.tileWidth)
}

// CoordY converts a tile row to its top edge.
func (m *Map) CoordY(ty int) float64 {
	return float64(ty * m.tileHeight)
}

// TileAt returns the tile at (tx, ty) of the active level.
func (m *Map) TileAt(tx, ty int) (tile.Tile, error) {
	if tx < 0 || tx >= m.width || ty < 0 || ty >= m.height {
		return tile.Tile{}, &OutOfBoundsError{TX: tx, TY: ty, Width: m.width, Height: m.height}
	}
	if m.active < 0 || m.active >= len(m.levels) {
		return tile.Tile{}, ErrNoActiveLevel
	}
	lvl := m.levels[m.active]
	if ty >= len(lvl) || tx >= len(lvl[ty]) {
		return tile.Tile{}, &MissingRowError{Level: m.active, TY: ty}
	}
	return lvl[ty][tx], nil
}

// TileAtCoord returns the tile under a physical coordinate.
func (m *Map) TileAtCoord(x, y float64) (tile.Tile, error) {
	return m.TileAt(m.TileX(x), m.TileY(y))
}

// SetTileAt changes the type of one tile of the active level.
func (m *Map) SetTileAt(tx, ty int, t tile.Type) error {
	if _, err := m.TileAt(tx, ty); err != nil {
		return err
	}
	return m.levels[m.active][ty][tx].SetType(int(t))
}

// Find returns the last tile of type t in level i, scanning row-major.
func (m *Map) Find(i int, t tile.Type) (tile.Tile, bool) {
	if i < 0 || i >= len(m.levels) {
		return tile.Tile{}, false
	}
	var found tile.Tile
	ok := false
	for _, row := range m.levels[i] {
		for _, tl := range row {
			if tl.Type == t {
				found, ok = tl, true
			}
		}
	}
	return found, ok
}

// FindSpawn returns the spawn tile of level i.
func (m *Map) FindSpawn(i int) (tile.Tile, bool) { return m.Find(i, tile.Spawn) }

// FindFinish returns the finish tile of level i.
func (m *Map) FindFinish(i int) (tile.Tile, bool) { return m.Find(i, tile.Finish) }

// HasSpawn reports whether level i contains a spawn tile.
func (m *Map) HasSpawn(i int) bool {
	_, ok := m.FindSpawn(i)
	return ok
}

// HasFinish reports whether level i contains a finish tile.
func (m *Map) HasFinish(i int) bool {
	_, ok := m.FindFinish(i)
	return ok
}

// HasSpawns reports whether every level contains a spawn tile.
func (m *Map) HasSpawns() bool {
	for i := range m.levels {
		if !m.HasSpawn(i) {
			return false
		}
	}
	return true
}

// HasLevelSpawn reports whether the active level contains a spawn tile.
func (m *Map) HasLevelSpawn() bool { return m.HasSpawn(m.active) }

// RemoveLevelSpawn clears the spawn tile of the active level.
func (m *Map) RemoveLevelSpawn() {
	if sp, ok := m.FindSpawn(m.active); ok {
		m.levels[m.active][sp.TY][sp.TX].Type = tile.Empty
	}
}

// RemoveLevelFinish clears the finish tile of the active level.
func (m *Map) RemoveLevelFinish() {
	if fin, ok := m.FindFinish(m.active); ok {
		m.levels[m.active][fin.TY][fin.TX].Type = tile.Empty
	}
}

// UpdateSpawns recomputes every level spawn from its spawn tile.
func (m *Map) UpdateSpawns() error {
	spawns := make([]Point, len(m.levels))
	for i := range m.levels {
		sp, ok := m.FindSpawn(i)
		if !ok {
			return fmt.Errorf("%w %d", ErrNoSpawn, i)
		}
		spawns[i] = Point{X: m.CoordX(sp.TX), Y: m.CoordY(sp.TY)}
	}
	m.Spawns = spawns
	return nil
}

// SpawnPoint returns the spawn coordinate of the active level.
func (m *Map) SpawnPoint() (Point, error) {
	if m.active < 0 || m.active >= len(m.Spawns) {
		return Point{}, fmt.Errorf("%w %d", ErrNoSpawn, m.active)
	}
	return m.Spawns[m.active], nil
}

// ChangeGround sets the bottom row of the active level to a theme's ground.
func (m *Map) ChangeGround(theme tile.Theme) error {
	t, ok := tile.GroundFor(theme)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	if m.active < 0 || m.active >= len(m.levels) {
		return ErrNoActiveLevel
	}
	lvl := m.levels[m.active]
	row := lvl[len(lvl)-1]
	for x := range row {
		row[x].Type = t
	}
	return nil
}

// RemoveGround turns the bottom row back into invisible wall.
func (m *Map) RemoveGround() error {
	return m.ChangeGround(tile.ThemeInvisible)
}

// ClearLevel resets the active level to a bordered blank grid.
func (m *Map) ClearLevel() error {
	if m.active < 0 || m.active >= len(m.levels) {
		return ErrNoActiveLevel
	}
	for y, row := range m.levels[m.active] {
		for x := range row {
			row[x].Type = m.borderType(x, y)
		}
	}
	return nil
}

// SaveFormat returns the tile codes as level x row x column.
func (m *Map) SaveFormat() [][][]int {
	out := make([][][]int, len(m.levels))
	for i, lvl := range m.levels {
		rows := make([][]int, len(lvl))
		for y, row := range lvl {
			codes := make([]int, len(row))
			for x, tl := range row {
				codes[x] = int(tl.Type)
			}
			rows[y] = codes
		}
		out[i] = rows
	}
	return out
}

// Import replaces all levels with the given tile codes and selects level 0.
// The map dimensions follow the imported grids, which must all share one
// rectangular shape.
func (m *Map) Import(data [][][]int) error {
	if len(data) == 0 {
		return ErrNoLevels
	}
	h := len(data[0])
	if h == 0 {
		return fmt.Errorf("%w: level 0 has no rows", ErrMalformed)
	}
	w := len(data[0][0])

	levels := make([]Level, len(data))
	for i, rows := range data {
		if len(rows) != h {
			return fmt.Errorf("%w: level %d has %d rows, expected %d", ErrMalformed, i, len(rows), h)
		}
		lvl := make(Level, h)
		for y, codes := range rows {
			if len(codes) != w {
				return fmt.Errorf("%w: level %d row %d has %d columns, expected %d", ErrMalformed, i, y, len(codes), w)
			}
			row := make([]tile.Tile, w)
			for x, code := range codes {
				if err := row[x].SetType(code); err != nil {
					return fmt.Errorf("level %d (%d,%d): %w", i, x, y, err)
				}
				row[x].TX, row[x].TY = x, y
			}
			lvl[y] = row
		}
		levels[i] = lvl
	}

	m.levels = levels
	m.width, m.height = w, h
	m.active = 0
	return nil
}

// Meta is the metadata shipped alongside a map's levels.
type Meta struct {
	ID               string   `json:"id" yaml:"id"`
	Author           string   `json:"author" yaml:"author"`
	Name             string   `json:"name" yaml:"name"`
	Difficulty       int      `json:"difficulty" yaml:"difficulty"`
	Spawns           []Point  `json:"spawns" yaml:"spawns,omitempty"`
	BackgroundScenes []string `json:"backgroundScenes" yaml:"background_scenes,omitempty"`
	Gravity          float64  `json:"gravity,omitempty" yaml:"gravity,omitempty"`
}

// Meta returns the current metadata.
func (m *Map) Meta() Meta {
	return Meta{
		ID:               m.ID,
		Author:           m.Author,
		Name:             m.Name,
		Difficulty:       m.Difficulty,
		Spawns:           append([]Point(nil), m.Spawns...),
		BackgroundScenes: append([]string(nil), m.BackgroundScenes...),
		Gravity:          m.gravity,
	}
}

// ApplyMeta copies loaded metadata onto the map. Unknown background scenes
// are rejected. Gravity is only taken when custom gravity is allowed.
func (m *Map) ApplyMeta(meta Meta) error {
	for _, bg := range meta.BackgroundScenes {
		if !IsKnownBackground(bg) {
			return fmt.Errorf("%w: %q", ErrUnknownBackground, bg)
		}
	}
	m.ID = meta.ID
	m.Author = meta.Author
	m.Name = meta.Name
	m.Difficulty = meta.Difficulty
	m.Spawns = append([]Point(nil), meta.Spawns...)
	m.BackgroundScenes = append([]string(nil), meta.BackgroundScenes...)
	if m.allowCustomGravity && meta.Gravity != 0 {
		m.gravity = meta.Gravity
	}
	return nil
}

// Load imports levels and metadata in one step. On error the map keeps
// its previous levels and metadata.
func (m *Map) Load(meta Meta, levels [][][]int) error {
	prev := *m
	if err := m.ApplyMeta(meta); err != nil {
		return err
	}
	if err := m.Import(levels); err != nil {
		*m = prev
		return err
	}
	return nil
}

// Validate checks that every level has a spawn and a finish tile.
func (m *Map) Validate() error {
	if len(m.levels) == 0 {
		return ErrNoLevels
	}
	for i := range m.levels {
		if !m.HasSpawn(i) {
			return ValidationError{Code: "NO_SPAWN", Level: i, Message: "level has no spawn tile"}
		}
		if !m.HasFinish(i) {
			return ValidationError{Code: "NO_FINISH", Level: i, Message: "level has no finish tile"}
		}
	}
	return nil
}
