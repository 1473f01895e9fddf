package player

// Animation states of the player sprite.
const (
	AnimIdle   = "idle"
	AnimWalk   = "walk"
	AnimJump   = "jump"
	AnimBounce = "bounce"
)

// Sprite names one animation frame, e.g. walkLeft frame 3.
type Sprite struct {
	Name  string
	Frame int
}

type animation struct {
	last  string
	frame int
	cur   *Sprite
}

// AnimationState picks the sprite state from the contact flags. Later
// rules take precedence.
func (p *Player) AnimationState() string {
	state := AnimIdle
	moving := p.Controls.Left || p.Controls.Right
	if !p.OnGround || (p.IsBouncing && p.VY > 0) {
		state = AnimJump
	}
	if p.OnGround && moving {
		state = AnimWalk
	}
	if p.IsBouncing && p.VY <= 0 {
		state = AnimBounce
	}
	return state
}

// Animate returns the sprite for render frame frameCount. The frame only
// advances every AnimationDelay render frames; a state change restarts
// the sequence. frames reports how many frames a sprite name has.
func (p *Player) Animate(frameCount int, frames func(name string) int) Sprite {
	delay := p.tuning.AnimationDelay
	if delay <= 0 {
		delay = 1
	}
	if p.anim.cur != nil && frameCount%delay != 0 {
		return *p.anim.cur
	}

	state := p.AnimationState()
	if state != p.anim.last {
		p.anim.frame = 0
		p.anim.last = state
	}
	name := state + p.Facing.String()

	n := 1
	if frames != nil {
		if got := frames(name); got > 0 {
			n = got
		}
	}
	sp := Sprite{Name: name, Frame: p.anim.frame % n}
	p.anim.frame = (p.anim.frame + 1) % n
	p.anim.cur = &sp
	return sp
}
