package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("size = %dx%d, expected 80x24", s.Width(), s.Height())
	}
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.Get(x, y); c != blank {
				t.Fatalf("Get(%d, %d) = %+v, expected a blank cell", x, y, c)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, '#', ColorGround)
	if c := s.Get(5, 5); c.Rune != '#' || c.Color != ColorGround {
		t.Errorf("Get(5, 5) = %+v, expected '#' in ground color", c)
	}

	s.Set(-1, 0, 'A', ColorDefault)
	s.Set(100, 0, 'A', ColorDefault)
	s.Set(0, -1, 'A', ColorDefault)
	if c := s.Get(100, 0); c != blank {
		t.Errorf("Get(100, 0) = %+v, expected blank", c)
	}
}

func TestScreenClearAndResize(t *testing.T) {
	s := NewScreen(4, 2)
	s.FillRect(s.Bounds(), 'x', ColorDim)
	if s.Row(1) != "xxxx" {
		t.Fatalf("Row(1) = %q, expected xxxx", s.Row(1))
	}

	s.Clear()
	if s.Row(0) != "    " {
		t.Errorf("Row(0) after Clear = %q, expected blanks", s.Row(0))
	}

	s.Resize(6, 3)
	if s.Width() != 6 || s.Height() != 3 || s.Row(2) != "      " {
		t.Errorf("after Resize: %dx%d %q", s.Width(), s.Height(), s.Row(2))
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(10, 1)

	s.DrawText(7, 0, "time", ColorHUD)
	if s.Row(0) != "       tim" {
		t.Errorf("Row(0) = %q, expected clipped text", s.Row(0))
	}

	s.Clear()
	s.DrawTextCentered(0, "ok", ColorHUD)
	if s.Row(0) != "    ok    " {
		t.Errorf("Row(0) = %q, expected centered text", s.Row(0))
	}
}

func TestScreenFillRectClips(t *testing.T) {
	s := NewScreen(5, 5)
	s.FillRect(NewRect(3, 3, 10, 10), '#', ColorGround)

	if s.Get(4, 4).Rune != '#' || s.Get(2, 2).Rune != ' ' {
		t.Errorf("FillRect did not clip to the screen:\n%s", s.String())
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBox(s.Bounds(), ColorHUD)

	expected := strings.Join([]string{"┌──┐", "│  │", "└──┘"}, "\n")
	if s.String() != expected {
		t.Errorf("String() =\n%s\nexpected\n%s", s.String(), expected)
	}
}
