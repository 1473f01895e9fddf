package game

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilejump/internal/camera"
	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/player"
	"github.com/vovakirdan/tilejump/internal/score"
)

var (
	// ErrNoLoader is returned by LoadMap on a session without a MapLoader.
	ErrNoLoader = errors.New("game: no map loader")
	// ErrSuperseded rejects a map load that a newer LoadMap replaced.
	ErrSuperseded = errors.New("game: map load superseded")
	// ErrNoMap is returned when starting without a loaded map.
	ErrNoMap = errors.New("game: no map loaded")
)

// MapLoader fetches a map by id.
type MapLoader interface {
	LoadMap(ctx context.Context, id string) (level.Data, error)
}

// Submitter sends an encoded run time for a map and returns the rankings.
type Submitter interface {
	SubmitTime(ctx context.Context, mapID string, t score.Tuple) (score.Result, error)
}

// Frame is the per-frame view handed to the renderer.
type Frame struct {
	Number     int
	State      State
	Map        *level.Map
	Player     *player.Player
	CameraX    float64
	CameraY    float64
	CameraW    float64
	CameraH    float64
	Paused     bool
	PassedTime int64
	Completion *Completion
}

// Renderer draws frames. It must not mutate the session.
type Renderer interface {
	Render(f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

// Render calls fn(f).
func (fn RendererFunc) Render(f Frame) { fn(f) }

// Completion is the outcome of a finished map.
type Completion struct {
	MapID   string
	Time    int64 // local run time in ms
	Pending bool  // submission in flight
	Result  *score.Result
	Err     error
}

// Accepted reports whether the server took the run.
func (c Completion) Accepted() bool {
	return c.Result != nil && c.Err == nil
}

// Options configures a Session. Clock and Host default to the system clock
// and a QueueHost.
type Options struct {
	Loop      LoopConfig
	Clock     Clock
	Host      FrameHost
	Renderer  Renderer
	Loader    MapLoader
	Submitter Submitter
	RNG       score.RNG
	Logger    *log.Logger

	// Context bounds the collaborator calls. Defaults to Background.
	Context context.Context
}

// ResetOptions selects the parts Reset leaves alone.
type ResetOptions struct {
	SkipMap    bool
	SkipPlayer bool
	SkipLoop   bool
	SkipCamera bool
	SkipTime   bool
}

// Session owns the map, player and camera and drives them through the
// loop. All methods must be called from the host goroutine; collaborator
// results are delivered through Dispatch.
type Session struct {
	m   *level.Map
	p   *player.Player
	cam *camera.Camera

	loop      *Loop
	host      FrameHost
	renderer  Renderer
	loader    MapLoader
	submitter Submitter
	rng       score.RNG
	log       *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan func()

	state      State
	mapID      string
	loaded     bool
	paused     bool
	gen        uint64
	completion *Completion
	sandboxRun int
	err        error
}

// NewSession wires a session around m, p and cam.
func NewSession(m *level.Map, p *player.Player, cam *camera.Camera, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Host == nil {
		opts.Host = NewQueueHost()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	ctx, cancel := context.WithCancel(opts.Context)
	s := &Session{
		m:         m,
		p:         p,
		cam:       cam,
		host:      opts.Host,
		renderer:  opts.Renderer,
		loader:    opts.Loader,
		submitter: opts.Submitter,
		rng:       opts.RNG,
		log:       opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		inbox:     make(chan func(), 16),
		state:     StateMenu,
		loaded:    m.LevelCount() > 0,
	}
	s.loop = NewLoop(opts.Loop, opts.Clock, opts.Host, s.update, s.render)
	s.loop.OnError(s.fail)
	cam.CacheMapSize(m)
	return s
}

// Close stops the loop and abandons in-flight collaborator calls.
func (s *Session) Close() {
	s.loop.Stop()
	s.cancel()
}

// State returns the current session state.
func (s *Session) State() State { return s.state }

func (s *Session) Map() *level.Map { return s.m }

func (s *Session) Player() *player.Player { return s.p }

func (s *Session) Camera() *camera.Camera { return s.cam }

func (s *Session) Loop() *Loop { return s.loop }

func (s *Session) Host() FrameHost { return s.host }

// MapID returns the id of the loaded map.
func (s *Session) MapID() string { return s.mapID }

// Running reports whether the loop is scheduled.
func (s *Session) Running() bool { return s.loop.Running() }

// Paused reports whether the session was suspended by Pause.
func (s *Session) Paused() bool { return s.paused }

// SandboxClears counts finished runs in the editor sandbox.
func (s *Session) SandboxClears() int { return s.sandboxRun }

// Err returns the error that last stopped the loop.
func (s *Session) Err() error { return s.err }

// Completion returns the outcome of the last finished map.
func (s *Session) Completion() (Completion, bool) {
	if s.completion == nil {
		return Completion{}, false
	}
	return *s.completion, true
}

// PassedTime returns the current run time in ms.
func (s *Session) PassedTime() int64 { return s.loop.PassedTime() }

// ResetPassedTime restarts the run timer.
func (s *Session) ResetPassedTime() { s.loop.ResetPassedTime() }

// Start runs the loop and enters state. Starting a running session only
// logs a warning.
func (s *Session) Start(state State) {
	if !s.loop.Start() {
		s.log.Warn("Game is already running.")
		return
	}
	s.state = state
	s.paused = false
	s.log.Info("Started game.", "state", state)
}

// Stop suspends the loop for reason and enters state. It is a no-op when
// the loop is not running.
func (s *Session) Stop(reason Reason, state State) {
	if !s.loop.Stop() {
		return
	}
	s.state = state
	s.log.Warn(reason.Message())
}

// Pause suspends a running play session into the menu.
func (s *Session) Pause() {
	if !s.Running() || s.state != StatePlay {
		return
	}
	s.Stop(ReasonPause, StateMenu)
	s.paused = true
}

// Resume continues a paused session without resetting it.
func (s *Session) Resume() {
	if !s.paused {
		return
	}
	s.Start(StatePlay)
}

// Reset restores the parts of the session not skipped by opts.
func (s *Session) Reset(opts ResetOptions) error {
	if !opts.SkipMap {
		if err := s.m.SetActiveLevel(0); err != nil {
			return err
		}
	}
	if !opts.SkipPlayer {
		s.p.LevelComplete = false
		s.p.ResetPhysics()
		s.p.ResetJumpControl()
		if err := s.p.Spawn(s.m); err != nil {
			return fmt.Errorf("game: reset player: %w", err)
		}
		s.p.SavePosition(true)
		s.completion = nil
	}
	if !opts.SkipLoop {
		s.loop.ResetFrames()
	}
	if !opts.SkipCamera {
		if err := s.cam.Update(s.p); err != nil {
			return err
		}
	}
	if !opts.SkipTime {
		s.loop.ResetPassedTime()
	}
	return nil
}

// Retry restarts the map without leaving the current state. A running
// loop is suspended for the reset and resumed after it.
func (s *Session) Retry() error {
	state, running := s.state, s.Running()
	s.Stop(ReasonRetryMap, state)
	if err := s.Reset(ResetOptions{}); err != nil {
		return err
	}
	if running {
		s.Start(state)
	}
	return nil
}

// ChangeBackground sets the background scene of the active level. The
// loop is suspended while the scene changes.
func (s *Session) ChangeBackground(scene string) error {
	state, running := s.state, s.Running()
	s.Stop(ReasonChangeBackground, state)
	err := s.m.SetBackground(scene)
	if running {
		s.Start(state)
	}
	return err
}

// Play resets the map and starts it, the menu's start action.
func (s *Session) Play() error {
	if !s.loaded {
		return ErrNoMap
	}
	if err := s.Reset(ResetOptions{}); err != nil {
		return err
	}
	s.Start(StatePlay)
	return nil
}

// LoadMap stops the loop and fetches map id. When the load resolves the
// map is imported, the player placed at its spawn and the session left in
// the menu. A failed load also leaves the session in the menu. Only the
// most recent load is applied; earlier ones are rejected with ErrSuperseded.
func (s *Session) LoadMap(id string) *Future[level.Meta] {
	s.Stop(ReasonLoadMap, StateMenu)
	s.gen++
	gen := s.gen
	fut := NewFuture[level.Meta]()

	if s.loader == nil {
		fut.Reject(ErrNoLoader)
		return fut
	}

	go func() {
		data, err := s.loader.LoadMap(s.ctx, id)
		delivered := s.post(func() {
			if gen != s.gen {
				fut.Reject(ErrSuperseded)
				return
			}
			if err != nil {
				s.log.Error("map load failed", "id", id, "err", err)
				fut.Reject(fmt.Errorf("game: load map %q: %w", id, err))
				return
			}
			if err := s.SetMap(id, data); err != nil {
				s.log.Error("map import failed", "id", id, "err", err)
				fut.Reject(err)
				return
			}
			fut.Resolve(data.Meta)
		})
		if !delivered {
			fut.Reject(s.ctx.Err())
		}
	}()
	return fut
}

// SetMap imports data as map id and resets the session onto it.
func (s *Session) SetMap(id string, data level.Data) error {
	if err := s.m.LoadData(data); err != nil {
		return fmt.Errorf("game: import map %q: %w", id, err)
	}
	s.cam.CacheMapSize(s.m)
	s.mapID = id
	s.loaded = true
	s.p.SavePosition(true)
	return s.Reset(ResetOptions{})
}

// ToggleEditorMode switches between editor and editor sandbox. Entering the
// sandbox respawns the player on the current level.
func (s *Session) ToggleEditorMode() error {
	if s.state == StateEditor {
		if err := s.Reset(ResetOptions{SkipMap: true}); err != nil {
			return err
		}
		s.state = StateEditorSandbox
	} else {
		s.state = StateEditor
	}
	s.m.ToggleEditorMode()
	return nil
}

// PrepareEditor adds a blank level, starts the loop and enters the editor.
func (s *Session) PrepareEditor() error {
	s.m.NewLevel()
	s.loaded = true
	s.cam.CacheMapSize(s.m)
	s.Start(StatePlay)
	return s.ToggleEditorMode()
}

// EnterSandbox starts the loop if needed and plays the loaded map in the
// editor sandbox.
func (s *Session) EnterSandbox() error {
	if !s.loaded {
		return ErrNoMap
	}
	if s.state == StateEditorSandbox && s.Running() {
		return nil
	}
	if !s.Running() {
		s.Start(StatePlay)
	}
	if s.state != StateEditor {
		s.state = StateEditor
		s.m.SetMode(level.EditorMode)
	}
	return s.ToggleEditorMode()
}

// HandleKey routes one key edge. Start and restart act on release as in
// the web client; everything else goes to the player.
func (s *Session) HandleKey(a core.Action, down bool) error {
	switch {
	case a == core.ActionRestart:
		if !down && (s.state == StatePlay || s.state == StateEditorSandbox) {
			return s.Retry()
		}
		return nil
	case a == core.ActionStart || (a == core.ActionJump && !down && s.state == StateMenu):
		if !down && s.state == StateMenu && !s.Running() && !s.p.LevelComplete {
			return s.Play()
		}
		return nil
	case a == core.ActionPause:
		if down {
			if s.paused {
				s.Resume()
			} else {
				s.Pause()
			}
		}
		return nil
	case a == core.ActionToggleEditor:
		if down && (s.state == StateEditor || s.state == StateEditorSandbox) {
			return s.ToggleEditorMode()
		}
		return nil
	}
	s.p.HandleAction(a, down)
	return nil
}

// Dispatch runs collaborator completions queued since the last call.
func (s *Session) Dispatch() {
	for {
		select {
		case fn := <-s.inbox:
			fn()
		default:
			return
		}
	}
}

// Await blocks until f completes, running collaborator completions of s
// in the meantime.
func Await[T any](ctx context.Context, s *Session, f *Future[T]) (T, error) {
	for {
		select {
		case <-f.Done():
			return f.Result()
		case fn := <-s.inbox:
			fn()
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// post queues fn for Dispatch. It fails once the session is closed.
func (s *Session) post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) update(dt float64) error {
	if s.state != StateEditor {
		if err := s.p.Update(dt, s.m); err != nil {
			return err
		}
	}

	if s.p.LevelComplete {
		if s.m.IsLastLevel() {
			if s.state == StateEditorSandbox {
				s.sandboxRun++
				s.log.Info("Sandbox run cleared.", "level", s.m.ActiveLevel())
				if err := s.p.Respawn(s.m); err != nil {
					return err
				}
			} else {
				s.complete()
			}
		} else if err := s.m.NextLevel(s.p); err != nil {
			return err
		}
	}

	return s.cam.Update(s.p)
}

func (s *Session) render(frame int) {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(s.Frame(frame))
}

// Frame builds the render view for frame number n.
func (s *Session) Frame(n int) Frame {
	return Frame{
		Number:     n,
		State:      s.state,
		Map:        s.m,
		Player:     s.p,
		CameraX:    s.cam.X,
		CameraY:    s.cam.Y,
		CameraW:    s.cam.Width(),
		CameraH:    s.cam.Height(),
		Paused:     s.paused,
		PassedTime: s.PassedTime(),
		Completion: s.completion,
	}
}

func (s *Session) fail(err error) {
	s.state = StateMenu
	s.err = err
	s.log.Error("Game stopped.", "err", err)
}

// complete finishes the map: stop, encode the run time and submit it.
func (s *Session) complete() {
	s.Stop(ReasonMapComplete, StateMenu)

	ms := s.PassedTime()
	c := &Completion{MapID: s.mapID, Time: ms}
	s.completion = c

	if s.submitter == nil {
		return
	}
	tuple, err := score.Encode(ms, s.rng)
	if err != nil {
		c.Err = err
		s.log.Warn("run time not submitted", "time", ms, "err", err)
		return
	}

	c.Pending = true
	mapID := s.mapID
	go func() {
		res, err := s.submitter.SubmitTime(s.ctx, mapID, tuple)
		s.post(func() {
			c.Pending = false
			if err != nil {
				c.Err = err
				s.log.Error("time submission failed", "map", mapID, "err", err)
				return
			}
			c.Result = &res
			s.log.Info("time submitted", "map", mapID, "time", res.Time, "rankings", len(res.Rankings))
		})
	}()
}
