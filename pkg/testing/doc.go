// Package testing provides deterministic test helpers for motion.
//
// # Quick Start
//
// Create a tester, start a runner on its scheduler, and pump frames:
//
//	func TestFade(t *testing.T) {
//	    tester := motiontest.NewFrameTester(t)
//	    rec := &motiontest.ProgressRecorder{}
//
//	    runner := animation.NewProgressRunner(tester.Source())
//	    runner.SetObserver(animation.Strong(rec))
//	    runner.Start(0, time.Second, false)
//
//	    if err := tester.PumpAndSettle(time.Second/60, 2*time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//	    if got := rec.Completions(); len(got) != 1 || !got[0] {
//	        t.Errorf("expected one finished completion, got %v", got)
//	    }
//	}
//
// NewFrameTester replaces the animation clock with a [FakeClock] for the
// duration of the test, so tests using it must not run in parallel.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import motiontest "github.com/go-drift/motion/pkg/testing"
package testing
