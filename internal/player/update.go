package player

import (
	"math"

	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/physics"
)

// Update advances the body by one fixed tick of length delta seconds.
//
// Position integrates the velocity of the previous tick before this tick's
// forces are added, then the result is clamped and collisions are resolved.
func (p *Player) Update(delta float64, g Grid) error {
	wasLeft := p.VX < 0
	wasRight := p.VX > 0

	t := p.tuning
	friction := t.Friction * t.AirFriction
	accel := t.Acceleration * t.AirAcceleration
	if p.OnGround {
		friction = t.Friction * t.GroundFriction
		accel = t.Acceleration
	}

	prof := p.profile()
	forceY := g.Gravity() * prof.GravityScale
	forceX := 0.0

	if p.Controls.Left {
		forceX -= accel
		p.Facing = FacingLeft
	} else if wasLeft {
		forceX += friction
	}

	if p.Controls.Right {
		forceX += accel
		p.Facing = FacingRight
	} else if wasRight {
		forceX -= friction
	}

	if p.Controls.Jump && p.OnGround && !p.IsJumping {
		forceY -= prof.JumpImpulse
		p.IsJumping = true
	}

	maxVX := prof.MaxVX(p.OnGround)

	p.X += delta * p.VX
	p.Y += delta * p.VY

	p.VX = core.ClampF(p.VX+forceX, -maxVX, maxVX)
	p.VY = core.ClampF(p.VY+forceY, -t.MaxVY, t.MaxVY)

	// friction overshoot
	if (p.VX > 0 && wasLeft) || (p.VX < 0 && wasRight) {
		p.VX = 0
	}

	return p.resolveCollisions(g)
}

// bounce reflects the vertical speed off a bounce pad. The reflection gets
// weaker the deeper the leading edge is into the tile.
func (p *Player) bounce(tileWidth float64) {
	var overlapX float64
	if p.VX >= 0 {
		overlapX = math.Mod(p.X+p.tuning.Width, tileWidth)
	} else {
		overlapX = tileWidth - math.Mod(p.X, tileWidth)
	}
	overlapX++

	prof := p.profile()
	p.VY *= -0.95 - physics.HitScale(overlapX) + prof.BounceVYScale
	p.VX *= prof.BounceVX
}
