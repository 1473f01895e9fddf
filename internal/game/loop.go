package game

import (
	"math"
	"time"
)

// Loop defaults.
const (
	DefaultFPS           = 60
	DefaultIdleThreshold = 0.33333 // seconds
)

// LoopConfig configures the fixed-timestep loop.
type LoopConfig struct {
	FPS           int     `yaml:"fps"`
	IdleThreshold float64 `yaml:"idle_threshold"`
}

// DefaultLoopConfig returns 60 updates per second with the stock idle guard.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{FPS: DefaultFPS, IdleThreshold: DefaultIdleThreshold}
}

// Loop accumulates wall-clock time between host frames and converts it into
// whole fixed-length updates. A frame renders only if it ran an update.
type Loop struct {
	clock Clock
	host  FrameHost

	timestep float64
	idle     float64

	update  func(dt float64) error
	render  func(frame int)
	onError func(error)

	running bool
	cancel  func()

	last       time.Time
	delta      float64
	timePassed float64
	offset     float64
	frameCount int
	updates    int
}

// NewLoop creates a stopped loop. update runs once per fixed step and render
// once per frame that updated. Nil clock and host are not allowed.
func NewLoop(cfg LoopConfig, clock Clock, host FrameHost, update func(float64) error, render func(int)) *Loop {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.IdleThreshold <= 0 {
		cfg.IdleThreshold = DefaultIdleThreshold
	}
	if render == nil {
		render = func(int) {}
	}
	return &Loop{
		clock:    clock,
		host:     host,
		timestep: 1 / float64(cfg.FPS),
		idle:     cfg.IdleThreshold,
		update:   update,
		render:   render,
		last:     clock.Now(),
	}
}

// OnError sets the handler for an update failure. The loop is already
// stopped when it runs.
func (l *Loop) OnError(fn func(error)) {
	l.onError = fn
}

// Timestep returns the fixed update length in seconds.
func (l *Loop) Timestep() float64 { return l.timestep }

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool { return l.running }

// FrameCount returns the number of rendered frames since the last reset.
func (l *Loop) FrameCount() int { return l.frameCount }

// Updates returns the total number of fixed updates run.
func (l *Loop) Updates() int { return l.updates }

// Start schedules the first frame. It returns false if already running.
// The frame reference is re-anchored so time spent stopped is not replayed.
func (l *Loop) Start() bool {
	if l.running {
		return false
	}
	l.running = true
	l.last = l.clock.Now()
	l.cancel = l.host.RequestFrame(l.tick)
	return true
}

// Stop cancels the scheduled frame. It returns false if not running.
// An update pass in progress finishes its current step, then no further
// step runs.
func (l *Loop) Stop() bool {
	if !l.running {
		return false
	}
	l.running = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return true
}

// ResetFrames zeroes the frame counter and the unprocessed time.
func (l *Loop) ResetFrames() {
	l.frameCount = 0
	l.delta = 0
}

// ResetPassedTime restarts the run timer from now.
func (l *Loop) ResetPassedTime() {
	l.offset = l.timePassed
	if l.running {
		l.offset += l.clock.Now().Sub(l.last).Seconds()
	}
}

// PassedTime returns the run time in whole milliseconds.
func (l *Loop) PassedTime() int64 {
	return int64(math.Round((l.timePassed - l.offset) * 1000))
}

func (l *Loop) tick() {
	if !l.running {
		return
	}
	l.cancel = l.host.RequestFrame(l.tick)

	now := l.clock.Now()
	elapsed := now.Sub(l.last).Seconds()
	l.delta += elapsed

	// A long gap (suspended host) runs a single step instead of the backlog.
	if l.delta >= l.idle {
		l.delta = l.timestep
	}

	updated := false
	for l.delta >= l.timestep && l.running {
		if err := l.update(l.timestep); err != nil {
			l.Stop()
			if l.onError != nil {
				l.onError(err)
			}
			break
		}
		l.delta -= l.timestep
		l.updates++
		updated = true
	}

	if updated {
		l.frameCount++
		l.render(l.frameCount)
	}
	l.timePassed += elapsed
	l.last = now
}
