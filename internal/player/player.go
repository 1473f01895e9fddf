// Package player implements the player body: kinematic state, controls,
// the per-tick movement update and the tile collision resolver.
package player

import (
	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/physics"
	"github.com/vovakirdan/tilejump/internal/tile"
)

// Default spawn used before a map assigns one.
const (
	DefaultX = 1920
	DefaultY = 1080
)

// Facing is the last horizontal direction the player moved in.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "Left"
	}
	return "Right"
}

// Controls are the held control flags.
type Controls struct {
	Left  bool
	Right bool
	Jump  bool
}

// Grid is the tile access the body update needs. *level.Map satisfies it.
type Grid interface {
	TileAt(tx, ty int) (tile.Tile, error)
	TileAtCoord(x, y float64) (tile.Tile, error)
	TileX(x float64) int
	TileY(y float64) int
	CoordX(tx int) float64
	CoordY(ty int) float64
	TileWidth() int
	TileHeight() int
	Gravity() float64
}

// Player is the controllable body. Position is the top-left of its box.
type Player struct {
	X, Y   float64
	VX, VY float64

	Mode     physics.Mode
	Controls Controls
	Facing   Facing

	OnGround      bool
	IsJumping     bool
	IsBouncing    bool
	LevelComplete bool

	lastBounce *tile.Tile
	save       level.Point
	tuning     physics.Tuning
	anim       animation
}

// New creates a player at (x, y) using the given movement tuning.
func New(x, y float64, tuning physics.Tuning) *Player {
	return &Player{
		X:      x,
		Y:      y,
		Mode:   physics.Mode1,
		save:   level.Point{X: x, Y: y},
		tuning: tuning,
		anim:   animation{last: AnimIdle},
	}
}

// NewDefault creates a player with the stock tuning at the default spawn.
func NewDefault() *Player {
	return New(DefaultX, DefaultY, physics.DefaultTuning())
}

// Width returns the body width.
func (p *Player) Width() float64 { return p.tuning.Width }

// Height returns the body height.
func (p *Player) Height() float64 { return p.tuning.Height }

// Tuning returns the movement constants in use.
func (p *Player) Tuning() physics.Tuning { return p.tuning }

// Position returns the top-left corner of the body.
func (p *Player) Position() (float64, float64) { return p.X, p.Y }

// SetPosition moves the body without touching its velocity.
func (p *Player) SetPosition(x, y float64) {
	p.X, p.Y = x, y
}

// Checkpoint returns the saved position.
func (p *Player) Checkpoint() level.Point { return p.save }

// SavePosition stores the current position as checkpoint. Without force
// this only happens while grounded.
func (p *Player) SavePosition(force bool) {
	if p.OnGround || force {
		p.save = level.Point{X: p.X, Y: p.Y}
	}
}

// LoadPosition returns to the checkpoint and drops vertical speed.
func (p *Player) LoadPosition() {
	p.X, p.Y = p.save.X, p.save.Y
	p.VY = 0
	p.lastBounce = nil
}

// ResetPhysics zeroes the velocity.
func (p *Player) ResetPhysics() {
	p.VX, p.VY = 0, 0
}

// ResetControls releases every held control.
func (p *Player) ResetControls() {
	p.Controls = Controls{}
}

// ResetJumpControl releases only the jump control.
func (p *Player) ResetJumpControl() {
	p.Controls.Jump = false
}

// Spawn places the player at the active level's spawn, moving up one tile
// at a time while the spawn cell is solid.
func (p *Player) Spawn(m *level.Map) error {
	sp, err := m.SpawnPoint()
	if err != nil {
		return err
	}
	x, y := sp.X, sp.Y
	for {
		t, err := m.TileAtCoord(x, y)
		if err != nil {
			return err
		}
		if !t.IsObstacle() {
			break
		}
		y -= float64(m.TileHeight())
	}
	p.SetPosition(x, y)
	return nil
}

// Respawn spawns the player and clears physics, controls and completion.
func (p *Player) Respawn(m *level.Map) error {
	if err := p.Spawn(m); err != nil {
		return err
	}
	p.ResetPhysics()
	p.ResetControls()
	p.LevelComplete = false
	return nil
}

// HandleAction applies one key edge.
func (p *Player) HandleAction(a core.Action, down bool) {
	switch a {
	case core.ActionMoveLeft:
		p.Controls.Left = down
	case core.ActionMoveRight:
		p.Controls.Right = down
	case core.ActionJump:
		p.Controls.Jump = down
	}
	if !down {
		return
	}
	switch a {
	case core.ActionMode1:
		p.Mode = physics.Mode1
	case core.ActionMode2:
		p.Mode = physics.Mode2
	case core.ActionMode3:
		p.Mode = physics.Mode3
	case core.ActionSavePosition:
		p.SavePosition(false)
	case core.ActionLoadPosition:
		p.LoadPosition()
	}
}

// profile returns the constants of the active mode.
func (p *Player) profile() physics.Profile {
	return p.tuning.Profile(p.Mode)
}
