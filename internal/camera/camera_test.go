package camera

import (
	"errors"
	"testing"
)

type size struct{ w, h float64 }

func (s size) PixelWidth() float64  { return s.w }
func (s size) PixelHeight() float64 { return s.h }

type point struct{ x, y float64 }

func (p point) Position() (float64, float64) { return p.x, p.y }

func TestUpdateRequiresMapSize(t *testing.T) {
	c := New(0, 0, 1920, 1080)
	if err := c.Update(point{100, 100}); !errors.Is(err, ErrMapSizeNotCached) {
		t.Errorf("Update() error = %v, expected ErrMapSizeNotCached", err)
	}
}

func TestUpdateClamp(t *testing.T) {
	c := New(0, 0, 1920, 1080)
	c.CacheMapSize(size{3840, 2160})

	tests := []struct {
		name   string
		px, py float64
		wantX  float64
		wantY  float64
	}{
		{"top left", 10, 10, 0, 0},
		{"exactly half", 960, 540, 0, 0},
		{"centered", 2000, 1000, 1040, 460},
		{"exact far edge", 2880, 1620, 1920, 1080},
		{"bottom right", 3800, 2100, 1920, 1080},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Update(point{tt.px, tt.py}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if c.X != tt.wantX || c.Y != tt.wantY {
				t.Errorf("camera = (%v,%v), expected (%v,%v)", c.X, c.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestUpdateStaysInBounds(t *testing.T) {
	c := NewWithPerspective(PerspectiveClose)
	mapW, mapH := 3840.0, 2160.0
	c.CacheMapSize(size{mapW, mapH})

	for x := 0.0; x <= mapW; x += 37 {
		for y := 0.0; y <= mapH; y += 41 {
			if err := c.Update(point{x, y}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if c.X < 0 || c.X > mapW-c.Width() {
				t.Fatalf("camera x = %v out of [0,%v] for player x %v", c.X, mapW-c.Width(), x)
			}
			if c.Y < 0 || c.Y > mapH-c.Height() {
				t.Fatalf("camera y = %v out of [0,%v] for player y %v", c.Y, mapH-c.Height(), y)
			}
		}
	}
}

func TestSmallMapPinsCamera(t *testing.T) {
	c := New(0, 0, 1920, 1080)
	c.CacheMapSize(size{600, 400})
	_ = c.Update(point{500, 300})
	if c.X != 0 || c.Y != 0 {
		t.Errorf("camera = (%v,%v), expected (0,0) on a small map", c.X, c.Y)
	}
}

func TestPerspectiveByName(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"", 1920, 1080},
		{"default", 1920, 1080},
		{"middle", 1630, 900},
		{"close", 1200, 720},
	}
	for _, tt := range tests {
		p, err := PerspectiveByName(tt.name)
		if err != nil {
			t.Fatalf("PerspectiveByName(%q) failed: %v", tt.name, err)
		}
		if p.Width != tt.w || p.Height != tt.h {
			t.Errorf("PerspectiveByName(%q) = %vx%v, expected %vx%v", tt.name, p.Width, p.Height, tt.w, tt.h)
		}
	}
	if _, err := PerspectiveByName("far"); err == nil {
		t.Error("PerspectiveByName(far) should fail")
	}
}
