// Package camera provides a viewport that follows a target and stays inside
// the map's pixel bounds.
package camera

import (
	"errors"
	"fmt"
)

// ErrMapSizeNotCached is returned by Update before CacheMapSize was called.
var ErrMapSizeNotCached = errors.New("camera: map size not cached")

// Perspective is a named viewport size.
type Perspective struct {
	Name   string
	Width  float64
	Height float64
}

// Built-in perspectives.
var (
	PerspectiveDefault = Perspective{Name: "default", Width: 1920, Height: 1080}
	PerspectiveMiddle  = Perspective{Name: "middle", Width: 1630, Height: 900}
	PerspectiveClose   = Perspective{Name: "close", Width: 1200, Height: 720}
)

// PerspectiveByName looks up a built-in perspective.
func PerspectiveByName(name string) (Perspective, error) {
	switch name {
	case "", PerspectiveDefault.Name:
		return PerspectiveDefault, nil
	case PerspectiveMiddle.Name:
		return PerspectiveMiddle, nil
	case PerspectiveClose.Name:
		return PerspectiveClose, nil
	}
	return Perspective{}, fmt.Errorf("camera: unknown perspective %q", name)
}

// Sizer is anything with a pixel size, typically a level map.
type Sizer interface {
	PixelWidth() float64
	PixelHeight() float64
}

// Target is the followed object.
type Target interface {
	Position() (x, y float64)
}

// Camera is a viewport in map pixel space.
type Camera struct {
	X, Y   float64
	width  float64
	height float64

	mapWidth  float64
	mapHeight float64
	cached    bool
}

// New creates a camera at (x, y) with the given viewport size.
func New(x, y, width, height float64) *Camera {
	return &Camera{X: x, Y: y, width: width, height: height}
}

// NewWithPerspective creates a camera at the origin using a perspective.
func NewWithPerspective(p Perspective) *Camera {
	return New(0, 0, p.Width, p.Height)
}

// Width returns the viewport width.
func (c *Camera) Width() float64 { return c.width }

// Height returns the viewport height.
func (c *Camera) Height() float64 { return c.height }

// HalfWidth returns half the viewport width.
func (c *Camera) HalfWidth() float64 { return c.width / 2 }

// HalfHeight returns half the viewport height.
func (c *Camera) HalfHeight() float64 { return c.height / 2 }

// SetPerspective resizes the viewport. The cached map size is kept.
func (c *Camera) SetPerspective(p Perspective) {
	c.width = p.Width
	c.height = p.Height
}

// CacheMapSize stores the pixel size of the map the camera is clamped to.
func (c *Camera) CacheMapSize(m Sizer) {
	c.mapWidth = m.PixelWidth()
	c.mapHeight = m.PixelHeight()
	c.cached = true
}

// MapSize returns the cached map size.
func (c *Camera) MapSize() (float64, float64, bool) {
	return c.mapWidth, c.mapHeight, c.cached
}

// Update recenters the camera on the target, clamping at the map edges.
func (c *Camera) Update(t Target) error {
	if !c.cached {
		return ErrMapSizeNotCached
	}
	px, py := t.Position()
	c.X = follow(px, c.width, c.mapWidth)
	c.Y = follow(py, c.height, c.mapHeight)
	return nil
}

// follow applies the clamp rule on one axis. Maps smaller than the
// viewport pin the camera at 0.
func follow(p, view, size float64) float64 {
	half := view / 2
	switch {
	case size <= view:
		return 0
	case p <= half:
		return 0
	case p >= size-half:
		return size - view
	default:
		return p - half
	}
}
