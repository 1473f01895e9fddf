package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ListFunc returns the maps the picker offers.
type ListFunc func() ([]MenuItem, error)

// SessionModel manages the full flow: map picker -> game -> map picker.
// This is the top-level model of SSH sessions and of `play` without a map.
type SessionModel struct {
	base     Options
	list     ListFunc
	menu     MenuModel
	game     *Model
	inGame   bool
	quitting bool
	err      error
}

// NewSessionModel creates a session whose games start from base with the
// picked map id.
func NewSessionModel(base Options, list ListFunc) SessionModel {
	m := SessionModel{base: base, list: list}
	m.menu = m.newMenu()
	return m
}

func (m *SessionModel) newMenu() MenuModel {
	items, err := m.list()
	menu := NewMenuModel(items, m.base.Runtime)
	if err != nil {
		m.err = err
	}
	return menu
}

// Err returns the last map listing or game start error.
func (m SessionModel) Err() error { return m.err }

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.base.Runtime.ScreenW = wsm.Width
		m.base.Runtime.ScreenH = wsm.Height
	}

	if m.inGame && m.game != nil {
		return m.updateGame(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, nil
	}

	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if selected := m.menu.Selected(); selected != nil {
		opts := m.base
		opts.MapID = selected.MapID
		gm, err := NewModel(opts)
		if err != nil {
			m.err = err
			m.menu = m.newMenu()
			return m, nil
		}
		m.game = &gm
		m.inGame = true
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = &gameModel
	}

	if m.game.BackToMenu() {
		m.inGame = false
		m.game = nil
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.inGame && m.game != nil {
		return m.game.View()
	}
	v := m.menu.View()
	if m.err != nil {
		v += "\n" + alertStyle.Render(m.err.Error())
	}
	return v
}

// Close releases the running game, if any.
func (m SessionModel) Close() {
	if m.game != nil {
		m.game.Session().Close()
	}
}

// RunSession runs the picker flow until the user quits.
func RunSession(base Options, list ListFunc) error {
	p := tea.NewProgram(
		NewSessionModel(base, list),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if sm, ok := final.(SessionModel); ok {
		sm.Close()
	}
	return err
}
