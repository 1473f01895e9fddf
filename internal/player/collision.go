package player

import (
	"math"

	"github.com/vovakirdan/tilejump/internal/tile"
)

// neighborhood is the 2x2 tile block around the body's top-left corner.
type neighborhood struct {
	cur, right, down, diag tile.Tile
}

func (n neighborhood) any(pred func(tile.Tile) bool) bool {
	return pred(n.cur) || pred(n.right) || pred(n.down) || pred(n.diag)
}

func sampleNeighborhood(g Grid, tx, ty int) (neighborhood, error) {
	var n neighborhood
	var err error
	if n.cur, err = g.TileAt(tx, ty); err != nil {
		return n, err
	}
	if n.right, err = g.TileAt(tx+1, ty); err != nil {
		return n, err
	}
	if n.down, err = g.TileAt(tx, ty+1); err != nil {
		return n, err
	}
	if n.diag, err = g.TileAt(tx+1, ty+1); err != nil {
		return n, err
	}
	return n, nil
}

// feet returns the tiles under the bottom-left and bottom-right corners.
func (p *Player) feet(g Grid) (tile.Tile, tile.Tile, error) {
	bottom := p.Y + p.tuning.Height
	lb, err := g.TileAtCoord(p.X, bottom)
	if err != nil {
		return lb, lb, err
	}
	rb, err := g.TileAtCoord(p.X+p.tuning.Width-1, bottom)
	return lb, rb, err
}

// resolveCollisions pushes the body out of solid tiles after a move and
// updates the contact flags. Vertical contact is handled before horizontal.
// A lookup outside the grid aborts the tick with the lookup error.
func (p *Player) resolveCollisions(g Grid) error {
	tw := float64(g.TileWidth())
	th := float64(g.TileHeight())
	w := p.tuning.Width

	tx, ty := g.TileX(p.X), g.TileY(p.Y)
	overX := math.Mod(p.X, tw)
	overY := math.Mod(p.Y, th)

	n, err := sampleNeighborhood(g, tx, ty)
	if err != nil {
		return err
	}
	lb, rb, err := p.feet(g)
	if err != nil {
		return err
	}

	onPad := lb.IsBounce() || rb.IsBounce()
	if p.VY > 0 && onPad {
		pad := rb
		if lb.IsBounce() {
			pad = lb
		}
		if p.lastBounce == nil || !p.lastBounce.SamePosition(pad) {
			p.bounce(tw)
			p.IsBouncing = true
		}
		p.lastBounce = &pad
	} else if !onPad {
		p.lastBounce = nil
	}

	if !p.LevelComplete && n.any(tile.Tile.IsFinish) {
		p.LevelComplete = true
	}

	// The body reaches into the right column only when it overhangs it.
	overhang := overX >= tw-w

	if p.VY > 0 {
		if (n.down.IsObstacle() && !n.cur.IsObstacle()) ||
			(n.diag.IsObstacle() && !n.right.IsObstacle() && overhang) {
			p.Y = g.CoordY(ty)
			p.VY = 0
			overY = 0
			p.IsBouncing = false
			p.IsJumping = false
			p.lastBounce = nil
		}
	} else if p.VY < 0 {
		if (n.cur.IsObstacle() && !n.down.IsObstacle()) ||
			(n.right.IsObstacle() && !n.diag.IsObstacle() && overhang) {
			p.Y = g.CoordY(ty + 1)
			p.VY = 0
			n.cur = n.down
			n.right = n.diag
			overY = 0
		}
	}

	if p.VX > 0 {
		if overhang && ((n.right.IsObstacle() && !n.cur.IsObstacle()) ||
			(n.diag.IsObstacle() && !n.down.IsObstacle() && overY != 0)) {
			p.X = g.CoordX(tx) + tw - w
			p.VX = 0
		}
	} else {
		if (n.cur.IsObstacle() && !n.right.IsObstacle()) ||
			(n.down.IsObstacle() && !n.diag.IsObstacle() && overY != 0) {
			p.X = g.CoordX(tx + 1)
			p.VX = 0
		}
	}

	lb, rb, err = p.feet(g)
	if err != nil {
		return err
	}
	p.OnGround = lb.IsObstacle() || rb.IsObstacle()
	return nil
}
