package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/mapfile"
	"github.com/vovakirdan/tilejump/internal/ranking"
)

// MenuItem represents a selectable map in the menu.
type MenuItem struct {
	MapID  string
	Title  string
	Detail string
}

// MenuItemsFromEntries lists the maps of a directory loader.
func MenuItemsFromEntries(entries []mapfile.Entry) []MenuItem {
	items := make([]MenuItem, len(entries))
	for i, e := range entries {
		items[i] = MenuItem{MapID: e.ID, Title: e.ID, Detail: e.Format}
	}
	return items
}

// MenuItemsFromSummaries lists the maps of a ranking server.
func MenuItemsFromSummaries(maps []ranking.MapSummary) []MenuItem {
	items := make([]MenuItem, len(maps))
	for i, s := range maps {
		detail := fmt.Sprintf("%d levels, %d plays", s.Levels, s.Plays)
		if s.Author != "" {
			detail = "by " + s.Author + ", " + detail
		}
		items[i] = MenuItem{MapID: s.ID, Title: s.Name, Detail: detail}
	}
	return items
}

// MenuModel is the Bubble Tea model for the map picker.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem // Set when user selects a map
}

// NewMenuModel creates a map picker over items.
func NewMenuModel(items []MenuItem, cfg core.RuntimeConfig) MenuModel {
	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}
	}

	return m, nil
}

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	menuDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("  T I L E J U M P  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a map", m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(menuDimStyle.Render("No maps found."), m.width))
		b.WriteString("\n")
	}

	var list strings.Builder
	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = menuCursorStyle.Render("> " + item.Title)
		}
		if item.Detail != "" {
			line += menuDimStyle.Render("  " + item.Detail)
		}
		list.WriteString(line)
		list.WriteString("\n")
	}
	b.WriteString(centerText(strings.TrimSuffix(list.String(), "\n"), m.width))

	b.WriteString("\n\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}
