package core

import "time"

// Action represents a semantic game action, abstracted from physical key presses.
// Hold actions (move, jump) have a pressed and a released edge; the others
// only act on press.
type Action int

const (
	ActionNone         Action = iota
	ActionMoveLeft            // A - held
	ActionMoveRight           // D - held
	ActionJump                // Space - held
	ActionMode1               // Left arrow - select physics mode 1
	ActionMode2               // Up arrow - select physics mode 2
	ActionMode3               // Right arrow - select physics mode 3
	ActionSavePosition        // V - store checkpoint
	ActionLoadPosition        // F - return to checkpoint
	ActionStart               // Space in menu - start the map
	ActionRestart             // Down arrow - retry the map
	ActionToggleEditor        // E - switch editor and sandbox
	ActionPause               // P, Escape - pause/unpause game
	ActionQuit                // Q, Ctrl+C - exit game/session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionMoveLeft:
		return "MoveLeft"
	case ActionMoveRight:
		return "MoveRight"
	case ActionJump:
		return "Jump"
	case ActionMode1:
		return "Mode1"
	case ActionMode2:
		return "Mode2"
	case ActionMode3:
		return "Mode3"
	case ActionSavePosition:
		return "SavePosition"
	case ActionLoadPosition:
		return "LoadPosition"
	case ActionStart:
		return "Start"
	case ActionRestart:
		return "Restart"
	case ActionToggleEditor:
		return "ToggleEditor"
	case ActionPause:
		return "Pause"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// IsHold reports whether the action is a held control.
func (a Action) IsHold() bool {
	return a == ActionMoveLeft || a == ActionMoveRight || a == ActionJump
}

// Browser key codes of the original web client.
const (
	KeySpace      = 32
	KeyArrowLeft  = 37
	KeyArrowUp    = 38
	KeyArrowRight = 39
	KeyArrowDown  = 40
	KeyA          = 65
	KeyD          = 68
	KeyE          = 69
	KeyF          = 70
	KeyP          = 80
	KeyV          = 86
)

var keyCodeActions = map[int]Action{
	KeyA:          ActionMoveLeft,
	KeyD:          ActionMoveRight,
	KeySpace:      ActionJump,
	KeyArrowLeft:  ActionMode1,
	KeyArrowUp:    ActionMode2,
	KeyArrowRight: ActionMode3,
	KeyV:          ActionSavePosition,
	KeyF:          ActionLoadPosition,
	KeyArrowDown:  ActionRestart,
	KeyE:          ActionToggleEditor,
	KeyP:          ActionPause,
}

// ActionForKeyCode maps a browser key code to its action.
// Space maps to Jump; the game treats Space in the menu as Start.
func ActionForKeyCode(code int) (Action, bool) {
	a, ok := keyCodeActions[code]
	return a, ok
}

// KeyEvent is one key-down or key-up edge.
type KeyEvent struct {
	Action Action
	Down   bool
}

// InputFrame collects the key edges delivered between two ticks.
type InputFrame struct {
	Events []KeyEvent
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Press records a key-down edge.
func (f *InputFrame) Press(a Action) {
	f.Events = append(f.Events, KeyEvent{Action: a, Down: true})
}

// Release records a key-up edge.
func (f *InputFrame) Release(a Action) {
	f.Events = append(f.Events, KeyEvent{Action: a, Down: false})
}

// Has returns true if the action was pressed this frame.
func (f InputFrame) Has(a Action) bool {
	for _, e := range f.Events {
		if e.Action == a && e.Down {
			return true
		}
	}
	return false
}

// Clear resets all events for the next frame.
func (f *InputFrame) Clear() {
	f.Events = f.Events[:0]
}

// DefaultHoldWindow covers the delay before a terminal starts repeating a
// held key.
const DefaultHoldWindow = 550 * time.Millisecond

// holdOrder fixes the release order of expired keys.
var holdOrder = []Action{ActionMoveLeft, ActionMoveRight, ActionJump}

// HoldTracker turns key presses from a terminal, which reports repeats but
// no key-up, into press and release edges. A held key is released when no
// repeat arrived within the window.
type HoldTracker struct {
	window time.Duration
	seen   map[Action]time.Time
}

// NewHoldTracker creates a tracker. A non-positive window uses
// DefaultHoldWindow.
func NewHoldTracker(window time.Duration) *HoldTracker {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &HoldTracker{window: window, seen: make(map[Action]time.Time)}
}

// Press records a key press at now. A hold action emits a down edge the
// first time and only refreshes its deadline on repeats; moving one way
// releases the other direction. Any other action is tapped: down and up
// in the same frame.
func (h *HoldTracker) Press(a Action, now time.Time, f *InputFrame) {
	if !a.IsHold() {
		f.Press(a)
		f.Release(a)
		return
	}
	switch a {
	case ActionMoveLeft:
		h.release(ActionMoveRight, f)
	case ActionMoveRight:
		h.release(ActionMoveLeft, f)
	}
	if _, held := h.seen[a]; !held {
		f.Press(a)
	}
	h.seen[a] = now
}

// Expire releases every key whose last press is older than the window.
func (h *HoldTracker) Expire(now time.Time, f *InputFrame) {
	for _, a := range holdOrder {
		if t, held := h.seen[a]; held && now.Sub(t) >= h.window {
			h.release(a, f)
		}
	}
}

// ReleaseAll releases every held key.
func (h *HoldTracker) ReleaseAll(f *InputFrame) {
	for _, a := range holdOrder {
		h.release(a, f)
	}
}

// Held reports whether a is currently held.
func (h *HoldTracker) Held(a Action) bool {
	_, held := h.seen[a]
	return held
}

func (h *HoldTracker) release(a Action, f *InputFrame) {
	if _, held := h.seen[a]; !held {
		return
	}
	delete(h.seen, a)
	f.Release(a)
}
