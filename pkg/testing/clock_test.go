package testing

import (
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	if elapsed := clk.Since(start); elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}

	clk.Advance(-time.Second)
	if elapsed := clk.Since(start); elapsed != 100*time.Millisecond {
		t.Errorf("negative advance should be ignored, got %v", elapsed)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestFrameTester_InstallsClock(t *testing.T) {
	tester := NewFrameTester(t)
	start := animation.Now()

	tester.Pump(250 * time.Millisecond)
	if got := animation.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("expected animation clock to advance 250ms, got %v", got)
	}
}

func TestFrameTester_PumpDeliversDelta(t *testing.T) {
	tester := NewFrameTester(t)

	var deltas []time.Duration
	sub := tester.Source().Subscribe(func(dt time.Duration) {
		deltas = append(deltas, dt)
	}, animation.ModeCommon)

	tester.PumpFrames(10*time.Millisecond, 20*time.Millisecond)
	sub.Cancel()
	tester.Pump(30 * time.Millisecond)

	if len(deltas) != 2 || deltas[0] != 10*time.Millisecond || deltas[1] != 20*time.Millisecond {
		t.Errorf("unexpected deltas %v", deltas)
	}
}

func TestFrameTester_PumpAndSettle(t *testing.T) {
	tester := NewFrameTester(t)
	rec := &ProgressRecorder{}

	runner := animation.NewProgressRunner(tester.Source())
	runner.SetObserver(animation.Strong(rec))
	if err := runner.Start(0, 100*time.Millisecond, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := tester.PumpAndSettle(10*time.Millisecond, time.Second); err != nil {
		t.Fatalf("expected settle, got %v", err)
	}
	if got := rec.Completions(); len(got) != 1 || !got[0] {
		t.Errorf("expected one finished completion, got %v", got)
	}
}

func TestFrameTester_PumpAndSettleTimeout(t *testing.T) {
	tester := NewFrameTester(t)

	runner := animation.NewProgressRunner(tester.Source())
	if err := runner.Start(0, 10*time.Second, false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := tester.PumpAndSettle(10*time.Millisecond, 100*time.Millisecond); err != ErrSettleTimeout {
		t.Errorf("expected ErrSettleTimeout, got %v", err)
	}
}

func TestProgressRecorder_Reset(t *testing.T) {
	rec := &ProgressRecorder{}
	rec.Update(0.5)
	rec.Complete(true)
	rec.Reset()

	if len(rec.Updates()) != 0 || len(rec.Completions()) != 0 {
		t.Error("expected Reset to clear recorded notifications")
	}
}
