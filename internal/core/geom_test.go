package core

import "testing"

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected Rect
		empty    bool
	}{
		{"overlapping", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), NewRect(5, 5, 5, 5), false},
		{"contained", NewRect(0, 0, 20, 20), NewRect(5, 5, 5, 5), NewRect(5, 5, 5, 5), false},
		{"adjacent", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), Rect{}, true},
		{"disjoint", NewRect(0, 0, 10, 10), NewRect(0, 15, 10, 10), Rect{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Intersect(tc.b)
			if got.Empty() != tc.empty {
				t.Fatalf("Intersect().Empty() = %v, expected %v", got.Empty(), tc.empty)
			}
			if !tc.empty && got != tc.expected {
				t.Errorf("Intersect() = %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 20)

	tests := []struct {
		x, y     int
		expected bool
	}{
		{15, 15, true},
		{10, 10, true},
		{29, 29, true},
		{30, 30, false},
		{5, 15, false},
	}

	for _, tc := range tests {
		if got := r.Contains(tc.x, tc.y); got != tc.expected {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name               string
		center, view, size int
		expected           int
	}{
		{"centered", 50, 20, 128, 40},
		{"left edge", 3, 20, 128, 0},
		{"right edge", 125, 20, 128, 108},
		{"view larger than map", 5, 200, 128, 0},
		{"exact fit", 64, 128, 128, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Window(tc.center, tc.view, tc.size); got != tc.expected {
				t.Errorf("Window() = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}
	if got := ClampF(-300, -210, 210); got != -210 {
		t.Errorf("ClampF() = %v, expected -210", got)
	}
}
