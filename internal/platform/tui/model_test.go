package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilejump/internal/config"
	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/game"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/tile"
)

type stubLoader map[string]level.Data

func (s stubLoader) LoadMap(_ context.Context, id string) (level.Data, error) {
	d, ok := s[id]
	if !ok {
		return level.Data{}, errors.New("not found")
	}
	return d, nil
}

func testOptions() Options {
	return Options{
		Config:  config.DefaultConfig(),
		Runtime: core.RuntimeConfig{ScreenW: 40, ScreenH: 13, TickRate: 60, HoldWindow: core.DefaultHoldWindow},
		Clock:   game.NewManualClock(time.Unix(0, 0)),
	}
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	t.Cleanup(m.Session().Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelStartsMapOnSpace(t *testing.T) {
	opts := testOptions()
	d := testMap().Data()
	opts.Data = &d
	m := newTestModel(t, opts)

	if m.Session().Running() {
		t.Fatal("session running before start")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.Session().Running() {
		t.Error("Running = false after space, expected true")
	}
	if s := m.Session().State(); s != game.StatePlay {
		t.Errorf("State = %v, expected %v", s, game.StatePlay)
	}
}

func TestModelViewShowsMenuOverlay(t *testing.T) {
	opts := testOptions()
	d := testMap().Data()
	opts.Data = &d
	m := newTestModel(t, opts)

	m, cmd := update(t, m, TickMsg(time.Unix(0, 0)))
	if cmd == nil {
		t.Error("tick returned no follow-up command")
	}
	v := m.View()
	if !strings.Contains(v, "Test") {
		t.Errorf("View missing map name:\n%s", v)
	}
	if !strings.Contains(v, "press space to start") {
		t.Errorf("View missing start prompt:\n%s", v)
	}
	if !strings.Contains(v, "┌") || !strings.Contains(v, "┘") {
		t.Errorf("View missing prompt box:\n%s", v)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, testOptions())
	m, cmd := update(t, m, runeKey('q'))
	if !m.IsQuitting() {
		t.Error("IsQuitting = false, expected true")
	}
	if cmd == nil {
		t.Error("quit returned no command")
	}
	if m.View() != "" {
		t.Error("View after quit is not empty")
	}
}

func TestModelBackToMenu(t *testing.T) {
	opts := testOptions()
	d := testMap().Data()
	opts.Data = &d
	m := newTestModel(t, opts)

	m, _ = update(t, m, runeKey('b'))
	if !m.BackToMenu() {
		t.Error("BackToMenu = false, expected true")
	}
}

func TestModelEditorPaint(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)

	if s := m.Session().State(); s != game.StateEditor {
		t.Fatalf("State = %v, expected %v", s, game.StateEditor)
	}
	m.renderer.Render(m.Session().Frame(0))
	tx, ty, ok := m.renderer.TileAt(5, 5)
	if !ok {
		t.Fatal("TileAt(5, 5) outside the map")
	}

	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	got, err := m.Session().Map().TileAt(tx, ty)
	if err != nil {
		t.Fatalf("TileAt: %v", err)
	}
	if got.Type != brushes[0] {
		t.Errorf("painted type = %v, expected %v", got.Type, brushes[0])
	}

	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	got, _ = m.Session().Map().TileAt(tx, ty)
	if got.Type != tile.Empty {
		t.Errorf("erased type = %v, expected empty", got.Type)
	}
}

func TestModelEditorBrushCycle(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)

	for i := 1; i <= len(brushes); i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.brush != i%len(brushes) {
			t.Fatalf("brush = %d, expected %d", m.brush, i%len(brushes))
		}
	}
	if !strings.HasPrefix(m.Status(), "brush: ") {
		t.Errorf("Status = %q, expected brush name", m.Status())
	}
}

func TestModelEditorGround(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)
	lm := m.Session().Map()
	bottom := lm.Height() - 1

	tests := []struct {
		key  rune
		want tile.Type
	}{
		{'g', 1},
		{'g', 21},
		{'G', tile.InvisibleWall},
	}
	for _, tt := range tests {
		m, _ = update(t, m, runeKey(tt.key))
		for _, x := range []int{0, lm.Width() / 2, lm.Width() - 1} {
			got, _ := lm.TileAt(x, bottom)
			if got.Type != tt.want {
				t.Errorf("after %q tile (%d,%d) = %v, expected %v", tt.key, x, bottom, got.Type, tt.want)
			}
		}
	}
}

func TestModelEditorBackground(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)

	for _, want := range level.Backgrounds[:2] {
		m, _ = update(t, m, runeKey('c'))
		if got := m.Session().Map().Background(); got != want {
			t.Errorf("Background = %q, expected %q", got, want)
		}
	}
	if s := m.Session().State(); s != game.StateEditor || !m.Session().Running() {
		t.Errorf("State = %v running = %v, expected running editor", s, m.Session().Running())
	}
}

func TestModelSandboxNeedsSpawns(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)

	m, _ = update(t, m, runeKey('e'))
	if s := m.Session().State(); s != game.StateEditor {
		t.Errorf("State = %v, expected %v without a spawn", s, game.StateEditor)
	}
	if !m.alert || !strings.Contains(m.Status(), "spawn") {
		t.Errorf("Status = %q, alert = %v, expected spawn error", m.Status(), m.alert)
	}
}

func TestModelEditorLevels(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)
	lm := m.Session().Map()

	tests := []struct {
		key    rune
		active int
		count  int
	}{
		{'n', 1, 2},
		{'n', 2, 3},
		{']', 0, 3},
		{'[', 2, 3},
		{'x', 1, 2},
		{'x', 0, 1},
	}
	for _, tt := range tests {
		m, _ = update(t, m, runeKey(tt.key))
		if lm.ActiveLevel() != tt.active || lm.LevelCount() != tt.count {
			t.Errorf("after %q level = %d/%d, expected %d/%d", tt.key, lm.ActiveLevel(), lm.LevelCount(), tt.active, tt.count)
		}
	}
	if !strings.Contains(m.Status(), "no spawn") {
		t.Errorf("Status = %q, expected missing spawn note", m.Status())
	}

	m, _ = update(t, m, runeKey('x'))
	if !m.alert || lm.LevelCount() != 1 {
		t.Errorf("removing the only level: alert = %v, levels = %d", m.alert, lm.LevelCount())
	}

	_ = lm.SetTileAt(3, 3, 1)
	m, _ = update(t, m, runeKey('X'))
	if got, _ := lm.TileAt(3, 3); got.Type != tile.Empty {
		t.Errorf("tile after clear = %v, expected empty", got.Type)
	}
}

func TestModelSaveWithoutPath(t *testing.T) {
	opts := testOptions()
	opts.Editor = true
	m := newTestModel(t, opts)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.alert || !strings.Contains(m.Status(), "no save path") {
		t.Errorf("Status = %q, alert = %v, expected save path error", m.Status(), m.alert)
	}
}

func TestModelLoadsThroughLoader(t *testing.T) {
	opts := testOptions()
	opts.Loader = stubLoader{"test": testMap().Data()}
	opts.MapID = "test"
	m := newTestModel(t, opts)

	if m.loading == nil {
		t.Fatal("no pending load")
	}
	if _, err := game.Await(context.Background(), m.Session(), m.loading); err != nil {
		t.Fatalf("load: %v", err)
	}
	m, _ = update(t, m, TickMsg(time.Unix(0, 0)))
	if m.loading != nil {
		t.Fatal("load still pending after tick")
	}
	if got := m.Session().Map().Name; got != "Test" {
		t.Errorf("map name = %q, expected %q", got, "Test")
	}
}

func TestSessionModelFlow(t *testing.T) {
	base := testOptions()
	base.Loader = stubLoader{"test": testMap().Data()}
	lists := 0
	list := func() ([]MenuItem, error) {
		lists++
		return []MenuItem{{MapID: "test", Title: "Test"}}, nil
	}

	sm := NewSessionModel(base, list)
	t.Cleanup(sm.Close)
	next, cmd := sm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sm = next.(SessionModel)
	if !sm.inGame || sm.game == nil {
		t.Fatal("enter did not start a game")
	}
	if cmd == nil {
		t.Error("game start returned no init command")
	}

	next, _ = sm.Update(runeKey('b'))
	sm = next.(SessionModel)
	if sm.inGame {
		t.Error("back did not return to the menu")
	}
	if lists != 2 {
		t.Errorf("list calls = %d, expected 2", lists)
	}

	next, _ = sm.Update(runeKey('q'))
	sm = next.(SessionModel)
	if !sm.quitting {
		t.Error("q in menu did not quit")
	}
}

func TestSessionModelListError(t *testing.T) {
	sm := NewSessionModel(testOptions(), func() ([]MenuItem, error) {
		return nil, errors.New("offline")
	})
	if sm.Err() == nil {
		t.Fatal("Err = nil, expected list error")
	}
	if v := sm.View(); !strings.Contains(v, "offline") {
		t.Errorf("View = %q, expected the error", v)
	}
}
