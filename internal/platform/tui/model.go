package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilejump/internal/camera"
	"github.com/vovakirdan/tilejump/internal/config"
	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/game"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/mapfile"
	"github.com/vovakirdan/tilejump/internal/player"
	"github.com/vovakirdan/tilejump/internal/tile"
)

// Options configures a game Model.
type Options struct {
	Config    config.Config
	Runtime   core.RuntimeConfig
	Loader    game.MapLoader
	Submitter game.Submitter
	Clock     game.Clock
	Logger    *log.Logger
	Context   context.Context // bounds map loads and submissions

	MapID   string      // loaded through Loader
	Data    *level.Data // used instead of Loader when set
	Sandbox bool        // play in the editor sandbox
	Editor  bool        // start on a blank map in the editor

	SavePath string           // ctrl+s target in the editor
	Watcher  *mapfile.Watcher // reloads the map file on change
	WatchID  string           // map id for reloaded files
}

// MapChangedMsg reports a changed map file from the watcher.
type MapChangedMsg struct{ Path string }

// brushes are the tile types the editor paints with, cycled by tab.
var brushes = []tile.Type{1, tile.Bounce, tile.Spawn, tile.Finish, tile.InvisibleWall, 125}

// groundThemes are cycled by g in the editor.
var groundThemes = []tile.Theme{
	tile.ThemeSpring, tile.ThemeDesert, tile.ThemeFactory,
	tile.ThemeGraveyard, tile.ThemeScifi, tile.ThemeWinter,
}

// Model is the Bubble Tea model hosting one game session.
type Model struct {
	session  *game.Session
	host     *game.QueueHost
	renderer *Renderer
	keys     *KeyMapper
	hold     *core.HoldTracker
	input    core.InputFrame
	help     help.Model
	board    ScoreboardModel
	boarded  bool
	loading  *game.Future[level.Meta]
	opts     Options
	status   string
	alert    bool
	shownErr error
	brush    int
	ground   int // next entry of groundThemes
	scene    int // next entry of level.Backgrounds
	now      func() time.Time

	quitting   bool
	backToMenu bool
}

// NewModel builds the map, player, camera and session described by opts.
func NewModel(opts Options) (Model, error) {
	cfg := opts.Config
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = cfg.Loop.FPS
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	cam := camera.New(0, 0, 0, 0)
	if err := config.ApplyPerspective(cam, cfg.Camera.Perspective); err != nil {
		return Model{}, err
	}

	host := game.NewQueueHost()
	screen := core.NewScreen(opts.Runtime.ScreenW, max(opts.Runtime.ScreenH-1, 1))
	r := NewRenderer(screen)

	s := game.NewSession(level.New(cfg.Level()), player.New(0, 0, cfg.Tuning()), cam, game.Options{
		Loop:      cfg.Loop,
		Clock:     opts.Clock,
		Host:      host,
		Renderer:  r,
		Loader:    opts.Loader,
		Submitter: opts.Submitter,
		Logger:    opts.Logger,
		Context:   opts.Context,
	})

	m := Model{
		session:  s,
		host:     host,
		renderer: r,
		keys:     NewKeyMapper(),
		hold:     core.NewHoldTracker(opts.Runtime.HoldWindow),
		help:     help.New(),
		board:    NewScoreboardModel("", nil, opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		opts:     opts,
		now:      time.Now,
	}
	m.help.Width = opts.Runtime.ScreenW

	switch {
	case opts.Editor:
		if err := s.PrepareEditor(); err != nil {
			s.Close()
			return Model{}, err
		}
		m.setStatus("editor: click to paint, tab for the next brush", false)
	case opts.Data != nil:
		id := opts.MapID
		if id == "" {
			id = opts.Data.Meta.ID
		}
		if err := s.SetMap(id, *opts.Data); err != nil {
			s.Close()
			return Model{}, err
		}
		if err := m.afterLoad(); err != nil {
			s.Close()
			return Model{}, err
		}
	case opts.MapID != "":
		m.loading = s.LoadMap(opts.MapID)
		m.setStatus("loading "+opts.MapID+"...", false)
	}
	return m, nil
}

// Session returns the hosted session.
func (m Model) Session() *game.Session { return m.session }

// Screen returns the render buffer.
func (m Model) Screen() *core.Screen { return m.renderer.Screen() }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.opts.Runtime.TickRate)}
	if m.opts.Watcher != nil {
		cmds = append(cmds, watchCmd(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case MapChangedMsg:
		m.reload(msg.Path)
		return m, watchCmd(m.opts.Watcher)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.session.Close()
		m.quitting = true
		return m, tea.Quit
	}

	if action == core.ActionNone {
		if m.session.State() == game.StateEditor && m.editKey(msg.String()) {
			return m, nil
		}
		switch {
		case msg.String() == "ctrl+s":
			m.save()
		case m.keys.MapKeyToMenuAction(msg) == MenuActionBack && !m.session.Running():
			m.session.Close()
			m.backToMenu = true
		}
		return m, nil
	}

	if action == core.ActionToggleEditor && m.session.State() == game.StateEditor && !m.session.Map().HasSpawns() {
		m.setStatus("every level needs a spawn before testing", true)
		return m, nil
	}

	stopped := !m.session.Running() && !m.session.Paused()
	if stopped && (action == core.ActionJump || action == core.ActionStart) {
		m.start()
		return m, nil
	}

	m.hold.Press(action, m.now(), &m.input)
	m.flush()
	return m, nil
}

// editKey handles the editor-only keys and reports whether k was one.
func (m *Model) editKey(k string) bool {
	lm := m.session.Map()
	var err error
	switch k {
	case "tab":
		m.brush = (m.brush + 1) % len(brushes)
		m.setStatus("brush: "+brushes[m.brush].String(), false)
	case "g":
		theme := groundThemes[m.ground]
		m.ground = (m.ground + 1) % len(groundThemes)
		if err = lm.ChangeGround(theme); err == nil {
			m.setStatus("ground: "+string(theme), false)
		}
	case "G":
		if err = lm.RemoveGround(); err == nil {
			m.setStatus("ground removed", false)
		}
	case "c":
		scene := level.Backgrounds[m.scene]
		m.scene = (m.scene + 1) % len(level.Backgrounds)
		if err = m.session.ChangeBackground(scene); err == nil {
			m.setStatus("background: "+scene, false)
		}
	case "n":
		lm.NewLevel()
		m.levelStatus()
	case "x":
		if err = lm.RemoveActiveLevel(); err == nil {
			m.levelStatus()
		}
	case "X":
		if err = lm.ClearLevel(); err == nil {
			m.setStatus("level cleared", false)
		}
	case "[":
		if err = lm.PreviousLevel(nil); err == nil {
			m.levelStatus()
		}
	case "]":
		if err = lm.NextLevel(nil); err == nil {
			m.levelStatus()
		}
	default:
		return false
	}
	if err != nil {
		m.setStatus(err.Error(), true)
	}
	m.renderer.Render(m.session.Frame(m.session.Loop().FrameCount()))
	return true
}

func (m *Model) levelStatus() {
	lm := m.session.Map()
	msg := fmt.Sprintf("level %d/%d", lm.ActiveLevel()+1, lm.LevelCount())
	if !lm.HasLevelSpawn() {
		msg += ", no spawn"
	}
	m.setStatus(msg, false)
}

// start plays the map from the menu, also after a finished run.
func (m *Model) start() {
	if _, done := m.session.Completion(); done {
		m.boarded = false
	}
	if err := m.session.Play(); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("", false)
}

// handleMouse paints tiles in the editor: left button with the brush,
// right button erases.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.session.State() != game.StateEditor || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	tx, ty, ok := m.renderer.TileAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}

	t := tile.Empty
	switch msg.Button {
	case tea.MouseButtonLeft:
		t = brushes[m.brush]
	case tea.MouseButtonRight:
	default:
		return m, nil
	}
	if err := m.paint(tx, ty, t); err != nil {
		m.setStatus(err.Error(), true)
	}
	return m, nil
}

// paint sets one tile. A level keeps a single spawn and finish.
func (m *Model) paint(tx, ty int, t tile.Type) error {
	lm := m.session.Map()
	switch t {
	case tile.Spawn:
		lm.RemoveLevelSpawn()
	case tile.Finish:
		lm.RemoveLevelFinish()
	}
	if err := lm.SetTileAt(tx, ty, t); err != nil {
		return err
	}
	if t == tile.Spawn {
		_ = lm.UpdateSpawns()
	}
	m.renderer.Render(m.session.Frame(m.session.Loop().FrameCount()))
	return nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.opts.Runtime.ScreenW = msg.Width
	m.opts.Runtime.ScreenH = msg.Height
	m.renderer.Screen().Resize(msg.Width, max(msg.Height-1, 1))
	m.help.Width = msg.Width
	b, _ := m.board.Update(msg)
	m.board = b.(ScoreboardModel)
	return m, nil
}

// handleTick releases expired keys, delivers collaborator results and
// runs the pending loop frame.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.hold.Expire(now, &m.input)
	m.flush()

	m.session.Dispatch()
	m.host.Fire()
	m.checkLoad()
	m.checkCompletion()
	if err := m.session.Err(); err != nil && err != m.shownErr {
		m.shownErr = err
		m.setStatus(err.Error(), true)
	}

	if !m.session.Running() {
		m.renderer.Render(m.session.Frame(m.session.Loop().FrameCount()))
	}
	return m, tickCmd(m.opts.Runtime.TickRate)
}

// flush hands the buffered key edges to the session.
func (m *Model) flush() {
	for _, e := range m.input.Events {
		if err := m.session.HandleKey(e.Action, e.Down); err != nil {
			m.setStatus(err.Error(), true)
		}
	}
	m.input.Clear()
}

func (m *Model) checkLoad() {
	if m.loading == nil {
		return
	}
	select {
	case <-m.loading.Done():
	default:
		return
	}
	meta, err := m.loading.Result()
	m.loading = nil
	if err != nil {
		if !errors.Is(err, game.ErrSuperseded) {
			m.setStatus(err.Error(), true)
		}
		return
	}
	m.setStatus("loaded "+meta.Name, false)
	if err := m.afterLoad(); err != nil {
		m.setStatus(err.Error(), true)
	}
}

// afterLoad applies the start mode to a freshly loaded map.
func (m *Model) afterLoad() error {
	if m.opts.Sandbox {
		return m.session.EnterSandbox()
	}
	return nil
}

// checkCompletion fills the scoreboard once the server answered.
func (m *Model) checkCompletion() {
	c, ok := m.session.Completion()
	if !ok || m.boarded || c.Pending {
		return
	}
	m.boarded = true
	switch {
	case c.Err != nil:
		m.setStatus(fmt.Sprintf("finished in %s, not submitted: %v", FormatTime(c.Time), c.Err), true)
	case c.Result != nil:
		m.board = NewScoreboardModel(m.session.Map().Name, c.Result.Rankings,
			m.opts.Runtime.ScreenW, max(m.opts.Runtime.ScreenH-2, 4))
		m.setStatus("finished in "+FormatTime(c.Result.Time), false)
	default:
		m.setStatus("finished in "+FormatTime(c.Time), false)
	}
}

// reload imports a changed map file and keeps the start mode.
func (m *Model) reload(path string) {
	d, err := mapfile.Load(path)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	id := m.opts.WatchID
	if id == "" {
		id = d.Meta.ID
	}
	wasRunning := m.session.Running()
	if err := m.session.SetMap(id, d); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.opts.Logger.Info("map reloaded", "file", path)
	m.setStatus("reloaded "+path, false)
	if wasRunning || m.opts.Sandbox {
		if err := m.afterLoad(); err != nil {
			m.setStatus(err.Error(), true)
		}
	}
}

// save writes the edited map to the configured path.
func (m *Model) save() {
	if m.opts.SavePath == "" {
		m.setStatus("no save path, start with --out", true)
		return
	}
	if err := mapfile.Save(m.opts.SavePath, m.session.Map().Data()); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("saved "+m.opts.SavePath, false)
}

func (m *Model) setStatus(s string, alert bool) {
	m.status = s
	m.alert = alert
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	if c, ok := m.session.Completion(); ok && !m.session.Running() && c.Result != nil {
		return m.board.View() + "\n" + m.statusLine("space: play again  b: back  q: quit")
	}

	m.drawOverlay()
	return RenderScreen(m.renderer.Screen()) + "\n" + m.statusLine(m.help.View(m.keys.Keys()))
}

// drawOverlay prints the menu prompt in a box over a stopped session.
func (m Model) drawOverlay() {
	if m.session.Running() {
		return
	}
	s := m.renderer.Screen()
	msg := "press space to start"
	switch {
	case m.session.Paused():
		msg = "paused - p to resume"
	case m.loading != nil:
		msg = "loading..."
	case m.session.Map().LevelCount() == 0:
		return
	}
	text := "  " + msg + "  "
	w := len([]rune(text)) + 2
	box := core.NewRect((s.Width()-w)/2, s.Height()/2-1, w, 3)
	s.FillRect(box, ' ', core.ColorHUD)
	s.DrawBox(box, core.ColorDim)
	s.DrawTextCentered(s.Height()/2, text, core.ColorHUD)
}

func (m Model) statusLine(hint string) string {
	if m.status == "" {
		return hintStyle.Render(hint)
	}
	if m.alert {
		return alertStyle.Render(truncate(m.status, m.opts.Runtime.ScreenW))
	}
	return statusStyle.Render(truncate(m.status, m.opts.Runtime.ScreenW))
}

func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	return strings.TrimSpace(s[:width])
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the map picker.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// watchCmd waits for the next changed map file.
func watchCmd(w *mapfile.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Events
		if !ok {
			return nil
		}
		return MapChangedMsg{Path: path}
	}
}

// Run starts the Bubble Tea program for opts and closes the session when
// it ends.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	defer model.Session().Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}
