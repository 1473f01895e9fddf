package game

import (
	"errors"
	"math"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type loopRig struct {
	clock   *ManualClock
	host    *QueueHost
	loop    *Loop
	updates int
	frames  []int
}

func newLoopRig() *loopRig {
	p := &loopRig{clock: NewManualClock(epoch), host: NewQueueHost()}
	p.loop = NewLoop(DefaultLoopConfig(), p.clock, p.host,
		func(float64) error {
			p.updates++
			return nil
		},
		func(frame int) {
			p.frames = append(p.frames, frame)
		})
	return p
}

func (p *loopRig) frame(d time.Duration) {
	p.clock.Advance(d)
	p.host.Fire()
}

func TestLoopUpdateCountMatchesDuration(t *testing.T) {
	const total = 10 * time.Second

	tests := []struct {
		name  string
		frame time.Duration
	}{
		{"1ms", time.Millisecond},
		{"7ms", 7 * time.Millisecond},
		{"60Hz", time.Second / 60},
		{"144Hz", time.Second / 144},
		{"50ms", 50 * time.Millisecond},
		{"250ms", 250 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newLoopRig()
			p.loop.Start()

			n := int(total / tt.frame)
			for i := 0; i < n; i++ {
				p.frame(tt.frame)
			}

			elapsed := (time.Duration(n) * tt.frame).Seconds()
			want := int(math.Floor(elapsed / p.loop.Timestep()))
			if diff := p.updates - want; diff < -1 || diff > 1 {
				t.Errorf("updates = %d, expected %d +-1", p.updates, want)
			}
		})
	}
}

func TestLoopIdleGapRunsOneStep(t *testing.T) {
	p := newLoopRig()
	p.loop.Start()

	p.frame(5 * time.Second)
	if p.updates != 1 {
		t.Errorf("updates after idle gap = %d, expected 1", p.updates)
	}
}

func TestLoopRendersOnlyAfterUpdate(t *testing.T) {
	p := newLoopRig()
	p.loop.Start()

	p.frame(5 * time.Millisecond)
	if len(p.frames) != 0 {
		t.Fatalf("rendered %v without an update", p.frames)
	}
	p.frame(15 * time.Millisecond)
	if len(p.frames) != 1 || p.frames[0] != 1 {
		t.Fatalf("frames = %v, expected [1]", p.frames)
	}
	p.frame(50 * time.Millisecond)
	if len(p.frames) != 2 || p.frames[1] != 2 {
		t.Errorf("frames = %v, expected one render per frame", p.frames)
	}
	if p.loop.FrameCount() != 2 {
		t.Errorf("FrameCount() = %d, expected 2", p.loop.FrameCount())
	}
}

func TestLoopStartStop(t *testing.T) {
	p := newLoopRig()

	if !p.loop.Start() {
		t.Fatal("first Start() = false")
	}
	if p.loop.Start() {
		t.Error("Start() on running loop = true")
	}
	if !p.loop.Stop() {
		t.Fatal("Stop() on running loop = false")
	}
	if p.loop.Stop() {
		t.Error("second Stop() = true")
	}
	if p.host.Pending() {
		t.Error("frame still pending after Stop")
	}

	p.frame(time.Second)
	if p.updates != 0 {
		t.Errorf("updates after Stop = %d, expected 0", p.updates)
	}
}

func TestLoopStopInsideUpdate(t *testing.T) {
	clock := NewManualClock(epoch)
	host := NewQueueHost()
	calls := 0
	var loop *Loop
	loop = NewLoop(DefaultLoopConfig(), clock, host, func(float64) error {
		calls++
		if calls == 2 {
			loop.Stop()
		}
		return nil
	}, nil)

	loop.Start()
	clock.Advance(100 * time.Millisecond)
	host.Fire()

	if calls != 2 {
		t.Errorf("updates = %d, expected the pass to end at the stopping step", calls)
	}
	if host.Pending() {
		t.Error("next frame scheduled after Stop")
	}
}

func TestLoopUpdateErrorStops(t *testing.T) {
	clock := NewManualClock(epoch)
	host := NewQueueHost()
	boom := errors.New("boom")
	loop := NewLoop(DefaultLoopConfig(), clock, host, func(float64) error { return boom }, nil)

	var got error
	loop.OnError(func(err error) { got = err })
	loop.Start()
	clock.Advance(50 * time.Millisecond)
	host.Fire()

	if !errors.Is(got, boom) {
		t.Errorf("OnError got %v, expected boom", got)
	}
	if loop.Running() {
		t.Error("loop still running after update error")
	}
}

func TestLoopPassedTime(t *testing.T) {
	p := newLoopRig()
	p.loop.Start()
	p.loop.ResetPassedTime()

	for i := 0; i < 100; i++ {
		p.frame(10 * time.Millisecond)
	}
	if got := p.loop.PassedTime(); got != 1000 {
		t.Errorf("PassedTime() = %d, expected 1000", got)
	}

	p.loop.Stop()
	p.clock.Advance(5 * time.Second)
	p.loop.Start()
	for i := 0; i < 50; i++ {
		p.frame(10 * time.Millisecond)
	}
	if got := p.loop.PassedTime(); got != 1500 {
		t.Errorf("PassedTime() after pause = %d, expected 1500", got)
	}

	p.loop.ResetPassedTime()
	if got := p.loop.PassedTime(); got != 0 {
		t.Errorf("PassedTime() after reset = %d, expected 0", got)
	}
}

func TestQueueHostCancel(t *testing.T) {
	h := NewQueueHost()
	ran := 0
	cancelOld := h.RequestFrame(func() { ran++ })
	h.RequestFrame(func() { ran += 10 })

	cancelOld()
	if !h.Pending() {
		t.Fatal("stale cancel dropped the newer frame")
	}
	h.Fire()
	if ran != 10 {
		t.Errorf("ran = %d, expected only the newer callback", ran)
	}
	if h.Fire() {
		t.Error("Fire() on empty host = true")
	}
}
