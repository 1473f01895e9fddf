package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilejump/internal/core"
)

// GameKeyMap holds the in-game key bindings. It doubles as the help line.
type GameKeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Jump    key.Binding
	Mode1   key.Binding
	Mode2   key.Binding
	Mode3   key.Binding
	Save    key.Binding
	Load    key.Binding
	Start   key.Binding
	Restart key.Binding
	Editor  key.Binding
	Pause   key.Binding
	Quit    key.Binding
}

// DefaultGameKeyMap follows the web client layout: A/D move, space jumps,
// the arrows pick the physics mode and down retries.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left:    key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a/d", "move")),
		Right:   key.NewBinding(key.WithKeys("d", "D")),
		Jump:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "jump")),
		Mode1:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←↑→", "mode")),
		Mode2:   key.NewBinding(key.WithKeys("up")),
		Mode3:   key.NewBinding(key.WithKeys("right")),
		Save:    key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v/f", "save/load")),
		Load:    key.NewBinding(key.WithKeys("f", "F")),
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Restart: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "retry")),
		Editor:  key.NewBinding(key.WithKeys("e", "E"), key.WithHelp("e", "editor")),
		Pause:   key.NewBinding(key.WithKeys("p", "P", "esc"), key.WithHelp("p", "pause")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Jump, k.Mode1, k.Save, k.Restart, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Jump, k.Mode1},
		{k.Save, k.Start, k.Restart},
		{k.Editor, k.Pause, k.Quit},
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
type KeyMapper struct {
	keys     GameKeyMap
	bindings []binding
}

type binding struct {
	key    key.Binding
	action core.Action
}

// NewKeyMapper creates a key mapper with the default bindings.
func NewKeyMapper() *KeyMapper {
	return NewKeyMapperWith(DefaultGameKeyMap())
}

// NewKeyMapperWith creates a key mapper for custom bindings.
func NewKeyMapperWith(k GameKeyMap) *KeyMapper {
	return &KeyMapper{
		keys: k,
		bindings: []binding{
			{k.Quit, core.ActionQuit},
			{k.Left, core.ActionMoveLeft},
			{k.Right, core.ActionMoveRight},
			{k.Jump, core.ActionJump},
			{k.Mode1, core.ActionMode1},
			{k.Mode2, core.ActionMode2},
			{k.Mode3, core.ActionMode3},
			{k.Save, core.ActionSavePosition},
			{k.Load, core.ActionLoadPosition},
			{k.Start, core.ActionStart},
			{k.Restart, core.ActionRestart},
			{k.Editor, core.ActionToggleEditor},
			{k.Pause, core.ActionPause},
		},
	}
}

// Keys returns the bindings, for the help line.
func (km *KeyMapper) Keys() GameKeyMap { return km.keys }

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	for _, b := range km.bindings {
		if key.Matches(msg, b.key) {
			return b.action, b.action == core.ActionQuit
		}
	}
	return core.ActionNone, false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
