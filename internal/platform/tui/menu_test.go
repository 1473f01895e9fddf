package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/mapfile"
	"github.com/vovakirdan/tilejump/internal/ranking"
	"github.com/vovakirdan/tilejump/internal/score"
)

func testItems() []MenuItem {
	return []MenuItem{
		{MapID: "one", Title: "One"},
		{MapID: "two", Title: "Two"},
		{MapID: "three", Title: "Three"},
	}
}

func updateMenu(t *testing.T, m MenuModel, msg tea.Msg) MenuModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(MenuModel)
}

func TestMenuNavigation(t *testing.T) {
	m := NewMenuModel(testItems(), core.DefaultConfig())

	m = updateMenu(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor after up at top = %d, expected 0", m.cursor)
	}
	for range 5 {
		m = updateMenu(t, m, runeKey('j'))
	}
	if m.cursor != 2 {
		t.Errorf("cursor after moving past the end = %d, expected 2", m.cursor)
	}
	m = updateMenu(t, m, runeKey('k'))
	if m.Selected() != nil {
		t.Fatal("Selected before enter, expected nil")
	}

	m = updateMenu(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if sel := m.Selected(); sel == nil || sel.MapID != "two" {
		t.Errorf("Selected = %v, expected two", sel)
	}
	if m.IsQuitting() {
		t.Error("selecting should not quit")
	}
}

func TestMenuQuitAndResize(t *testing.T) {
	m := NewMenuModel(nil, core.DefaultConfig())
	m = updateMenu(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if c := m.Config(); c.ScreenW != 100 || c.ScreenH != 30 {
		t.Errorf("Config = %dx%d, expected 100x30", c.ScreenW, c.ScreenH)
	}
	if v := m.View(); !strings.Contains(v, "No maps found.") {
		t.Errorf("View = %q, expected empty list message", v)
	}

	m = updateMenu(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected() != nil {
		t.Error("Selected on empty menu, expected nil")
	}
	m = updateMenu(t, m, runeKey('q'))
	if !m.IsQuitting() {
		t.Error("IsQuitting = false, expected true")
	}
}

func TestMenuItems(t *testing.T) {
	entries := MenuItemsFromEntries([]mapfile.Entry{{ID: "world/1", Format: "yaml"}})
	if len(entries) != 1 || entries[0].MapID != "world/1" || entries[0].Detail != "yaml" {
		t.Errorf("MenuItemsFromEntries = %+v", entries)
	}

	summaries := MenuItemsFromSummaries([]ranking.MapSummary{
		{ID: "m1", Name: "Meadow", Author: "ana", Levels: 3, Plays: 7},
		{ID: "m2", Name: "Cave", Levels: 1},
	})
	expected := []MenuItem{
		{MapID: "m1", Title: "Meadow", Detail: "by ana, 3 levels, 7 plays"},
		{MapID: "m2", Title: "Cave", Detail: "1 levels, 0 plays"},
	}
	for i, e := range expected {
		if summaries[i] != e {
			t.Errorf("item %d = %+v, expected %+v", i, summaries[i], e)
		}
	}
}

func TestScoreboardCursorOnPlayer(t *testing.T) {
	rankings := []score.Ranking{
		{Name: "ana", Time: 10000},
		{Name: "bo", Time: 11000},
		{Name: "me", Time: 12500, Player: true},
	}
	m := NewScoreboardModel("Meadow", rankings, 80, 24)

	if got := m.table.Cursor(); got != 2 {
		t.Errorf("cursor = %d, expected 2", got)
	}
	rows := m.table.Rows()
	if rows[2][1] != "> me" {
		t.Errorf("player row name = %q, expected %q", rows[2][1], "> me")
	}
	if rows[0][0] != "#1" || rows[0][2] != "0:10.000" {
		t.Errorf("first row = %v, expected #1 and 0:10.000", rows[0])
	}
}

func TestScoreboardUpdates(t *testing.T) {
	m := NewScoreboardModel("Meadow", nil, 80, 24)
	if v := m.View(); !strings.Contains(v, "No times recorded yet.") {
		t.Errorf("View = %q, expected empty message", v)
	}

	next, _ := m.Update(RankingsMsg{{Name: "ana", Time: 9000}})
	m = next.(ScoreboardModel)
	if len(m.Rankings()) != 1 {
		t.Fatalf("Rankings = %d, expected 1", len(m.Rankings()))
	}

	next, _ = m.Update(runeKey('b'))
	m = next.(ScoreboardModel)
	if !m.IsGoingBack() || m.IsQuitting() {
		t.Errorf("IsGoingBack = %v, IsQuitting = %v, expected true, false", m.IsGoingBack(), m.IsQuitting())
	}
}
