// Package physics holds the constant tables that drive player movement:
// the three physics modes and the shared movement tuning.
package physics

import (
	"errors"
	"fmt"
)

// Mode selects one of the three physics profiles.
type Mode int

const (
	Mode1 Mode = iota + 1
	Mode2
	Mode3
)

// Valid reports whether m names a profile.
func (m Mode) Valid() bool {
	return m >= Mode1 && m <= Mode3
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return fmt.Sprintf("mode %d", int(m))
}

// Profile is the constant set of one physics mode.
type Profile struct {
	GravityScale  float64 `yaml:"gravity_scale"`
	JumpImpulse   float64 `yaml:"jump_impulse"`
	MaxVXGrounded float64 `yaml:"max_vx_grounded"`
	MaxVXAirborne float64 `yaml:"max_vx_airborne"`
	BounceVX      float64 `yaml:"bounce_vx"`       // multiplier applied to vx on bounce
	BounceVYScale float64 `yaml:"bounce_vy_scale"` // added to the vy reflection factor
}

// MaxVX returns the horizontal speed cap for the grounded state.
func (p Profile) MaxVX(onGround bool) float64 {
	if onGround {
		return p.MaxVXGrounded
	}
	return p.MaxVXAirborne
}

// MaxSafeInteger mirrors the vertical speed cap of browser clients.
const MaxSafeInteger = 1<<53 - 1

// Tuning is the full movement configuration of a player body.
type Tuning struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Acceleration    float64 `yaml:"acceleration"`
	Friction        float64 `yaml:"friction"`
	GroundFriction  float64 `yaml:"ground_friction"`  // friction multiplier while grounded
	AirFriction     float64 `yaml:"air_friction"`     // friction multiplier while airborne
	AirAcceleration float64 `yaml:"air_acceleration"` // acceleration multiplier while airborne
	MaxVY           float64 `yaml:"max_vy"`

	AnimationDelay int `yaml:"animation_delay"`

	Modes [3]Profile `yaml:"modes"`
}

// Profile returns the constants of mode m. Unknown modes fall back to Mode1.
func (t Tuning) Profile(m Mode) Profile {
	if !m.Valid() {
		m = Mode1
	}
	return t.Modes[m-1]
}

// baseMaxVX is the reference speed the movement constants derive from.
const baseMaxVX = 30 * 6

// DefaultTuning returns the stock movement constants.
func DefaultTuning() Tuning {
	return Tuning{
		Width:           15,
		Height:          30,
		Acceleration:    baseMaxVX / 2,
		Friction:        baseMaxVX / (1.0 / 6),
		GroundFriction:  10,
		AirFriction:     0.04,
		AirAcceleration: 0.2,
		MaxVY:           MaxSafeInteger,
		AnimationDelay:  6,
		Modes: [3]Profile{
			{
				GravityScale:  1,
				JumpImpulse:   240,
				MaxVXGrounded: 30 * 7,
				MaxVXAirborne: 30 * 9,
				BounceVX:      1.8,
				BounceVYScale: 0,
			},
			{
				GravityScale:  0.95,
				JumpImpulse:   240,
				MaxVXGrounded: 30 * 7,
				MaxVXAirborne: 30 * 7,
				BounceVX:      1.5,
				BounceVYScale: -0.01,
			},
			{
				GravityScale:  0.85,
				JumpImpulse:   240,
				MaxVXGrounded: 30 * 6,
				MaxVXAirborne: 30 * 6,
				BounceVX:      1.1,
				BounceVYScale: -0.02,
			},
		},
	}
}

// ErrInvalidTuning is wrapped by every Validate failure.
var ErrInvalidTuning = errors.New("physics: invalid tuning")

// Validate rejects tunings the body update cannot run with.
func (t Tuning) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: body size %vx%v", ErrInvalidTuning, t.Width, t.Height)
	}
	if t.MaxVY <= 0 {
		return fmt.Errorf("%w: max_vy %v", ErrInvalidTuning, t.MaxVY)
	}
	for i, p := range t.Modes {
		if p.MaxVXGrounded <= 0 || p.MaxVXAirborne <= 0 {
			return fmt.Errorf("%w: mode %d has no horizontal speed", ErrInvalidTuning, i+1)
		}
	}
	return nil
}

// HitScale scales the bounce reflection by how far into the pad the body
// landed, measured from its leading edge.
func HitScale(overlapX float64) float64 {
	return (-0.2/29)*overlapX + 6.0/29
}
