package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
)

// ErrSettleTimeout is returned by PumpAndSettle when subscriptions are still
// active after the timeout.
var ErrSettleTimeout = errors.New("pump and settle timed out")

// FrameTester drives an [animation.FrameScheduler] with explicit deltas while
// a [FakeClock] stands in for the animation clock.
type FrameTester struct {
	clock     *FakeClock
	scheduler *animation.FrameScheduler
}

// NewFrameTester creates a tester and installs its fake clock as the
// animation clock until tb finishes.
func NewFrameTester(tb testing.TB) *FrameTester {
	tb.Helper()
	clk := NewFakeClock()
	prev := animation.SetClock(clk)
	tb.Cleanup(func() {
		animation.SetClock(prev)
	})
	return &FrameTester{
		clock:     clk,
		scheduler: animation.NewFrameScheduler(),
	}
}

// Clock returns the fake clock.
func (t *FrameTester) Clock() *FakeClock {
	return t.clock
}

// Scheduler returns the scheduler being driven.
func (t *FrameTester) Scheduler() *animation.FrameScheduler {
	return t.scheduler
}

// Source returns the scheduler as a frame source.
func (t *FrameTester) Source() animation.FrameSource {
	return t.scheduler
}

// Pump advances the clock by dt and delivers one frame. It returns how many
// handlers ran.
func (t *FrameTester) Pump(dt time.Duration) int {
	t.clock.Advance(dt)
	return t.scheduler.Step(dt)
}

// PumpN delivers n frames of dt each.
func (t *FrameTester) PumpN(n int, dt time.Duration) {
	for i := 0; i < n; i++ {
		t.Pump(dt)
	}
}

// PumpFrames delivers one frame per delta, in order.
func (t *FrameTester) PumpFrames(deltas ...time.Duration) {
	for _, dt := range deltas {
		t.Pump(dt)
	}
}

// PumpAndSettle delivers frames of dt until no subscription is left or the
// accumulated time reaches timeout. A non-positive dt uses one 120 Hz frame.
func (t *FrameTester) PumpAndSettle(dt, timeout time.Duration) error {
	if dt <= 0 {
		dt = animation.DefaultTolerance
	}
	var elapsed time.Duration
	for elapsed < timeout {
		if !t.scheduler.HasSubscribers() {
			return nil
		}
		t.Pump(dt)
		elapsed += dt
	}
	if t.scheduler.HasSubscribers() {
		return ErrSettleTimeout
	}
	return nil
}
