package core

import (
	"reflect"
	"testing"
	"time"
)

func TestActionForKeyCode(t *testing.T) {
	tests := []struct {
		code     int
		expected Action
	}{
		{KeyA, ActionMoveLeft},
		{KeyD, ActionMoveRight},
		{KeySpace, ActionJump},
		{KeyArrowLeft, ActionMode1},
		{KeyArrowUp, ActionMode2},
		{KeyArrowRight, ActionMode3},
		{KeyArrowDown, ActionRestart},
		{KeyV, ActionSavePosition},
		{KeyF, ActionLoadPosition},
		{KeyE, ActionToggleEditor},
	}

	for _, tc := range tests {
		t.Run(tc.expected.String(), func(t *testing.T) {
			a, ok := ActionForKeyCode(tc.code)
			if !ok || a != tc.expected {
				t.Errorf("ActionForKeyCode(%d) = %v, %v, expected %v", tc.code, a, ok, tc.expected)
			}
		})
	}

	if _, ok := ActionForKeyCode(13); ok {
		t.Error("ActionForKeyCode(13) mapped an unbound key")
	}
}

func TestIsHold(t *testing.T) {
	for _, a := range []Action{ActionMoveLeft, ActionMoveRight, ActionJump} {
		if !a.IsHold() {
			t.Errorf("%v.IsHold() = false, expected true", a)
		}
	}
	for _, a := range []Action{ActionMode1, ActionRestart, ActionPause, ActionSavePosition} {
		if a.IsHold() {
			t.Errorf("%v.IsHold() = true, expected false", a)
		}
	}
}

func TestInputFrame(t *testing.T) {
	f := NewInputFrame()
	f.Press(ActionJump)
	f.Release(ActionMode1)

	if !f.Has(ActionJump) {
		t.Error("Has(Jump) = false after Press")
	}
	if f.Has(ActionMode1) {
		t.Error("Has(Mode1) = true for a release edge")
	}

	f.Clear()
	if len(f.Events) != 0 {
		t.Errorf("Events after Clear = %v, expected none", f.Events)
	}
}

func TestHoldTracker(t *testing.T) {
	start := time.Unix(0, 0)
	window := 100 * time.Millisecond
	at := func(ms int) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }

	h := NewHoldTracker(window)
	var f InputFrame

	h.Press(ActionMoveRight, at(0), &f)
	h.Press(ActionMoveRight, at(60), &f)
	h.Expire(at(120), &f)
	if want := []KeyEvent{{ActionMoveRight, true}}; !reflect.DeepEqual(f.Events, want) {
		t.Fatalf("events = %v, expected one press while repeating", f.Events)
	}
	if !h.Held(ActionMoveRight) {
		t.Error("Held(MoveRight) = false while repeating")
	}

	f.Clear()
	h.Expire(at(160), &f)
	if want := []KeyEvent{{ActionMoveRight, false}}; !reflect.DeepEqual(f.Events, want) {
		t.Errorf("events = %v, expected a release after the window", f.Events)
	}
}

func TestHoldTrackerOppositeDirection(t *testing.T) {
	now := time.Unix(0, 0)
	h := NewHoldTracker(0)
	var f InputFrame

	h.Press(ActionMoveLeft, now, &f)
	h.Press(ActionMoveRight, now, &f)

	want := []KeyEvent{{ActionMoveLeft, true}, {ActionMoveLeft, false}, {ActionMoveRight, true}}
	if !reflect.DeepEqual(f.Events, want) {
		t.Errorf("events = %v, expected %v", f.Events, want)
	}
}

func TestHoldTrackerTapsOtherActions(t *testing.T) {
	h := NewHoldTracker(0)
	var f InputFrame

	h.Press(ActionMode2, time.Unix(0, 0), &f)
	want := []KeyEvent{{ActionMode2, true}, {ActionMode2, false}}
	if !reflect.DeepEqual(f.Events, want) {
		t.Errorf("events = %v, expected %v", f.Events, want)
	}
	if h.Held(ActionMode2) {
		t.Error("Held(Mode2) = true for a tapped action")
	}
}

func TestHoldTrackerReleaseAll(t *testing.T) {
	now := time.Unix(0, 0)
	h := NewHoldTracker(0)
	var f InputFrame
	h.Press(ActionJump, now, &f)
	h.Press(ActionMoveLeft, now, &f)
	f.Clear()

	h.ReleaseAll(&f)
	want := []KeyEvent{{ActionMoveLeft, false}, {ActionJump, false}}
	if !reflect.DeepEqual(f.Events, want) {
		t.Errorf("events = %v, expected %v", f.Events, want)
	}
}
