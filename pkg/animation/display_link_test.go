package animation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	motionerrors "github.com/go-drift/motion/pkg/errors"
)

func startLink(t *testing.T, link *animation.DisplayLink) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- link.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run() = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
}

func TestDisplayLink_Interval(t *testing.T) {
	if got := animation.NewDisplayLink(60).Interval(); got != time.Second/60 {
		t.Errorf("Interval() = %v, want %v", got, time.Second/60)
	}
	if got := animation.NewDisplayLink(0).Interval(); got != time.Second/120 {
		t.Errorf("Interval() with default rate = %v, want %v", got, time.Second/120)
	}
	if got := animation.NewDisplayLink(2e9).Interval(); got != time.Second/120 {
		t.Errorf("Interval() for a sub-nanosecond frame = %v, want %v", got, time.Second/120)
	}
}

func TestDisplayLink_DrivesRunToCompletion(t *testing.T) {
	link := animation.NewDisplayLink(500)
	startLink(t, link)

	done := make(chan bool, 1)
	var updates int
	link.Dispatch(func() {
		runner := animation.NewProgressRunner(link.Source())
		runner.SetObserver(animation.Strong(animation.ObserverFuncs{
			OnUpdate: func(float64) { updates++ },
			OnComplete: func(finished bool) {
				done <- finished
			},
		}))
		if err := runner.Start(0, 40*time.Millisecond, false); err != nil {
			t.Errorf("Start() error = %v", err)
		}
	})

	select {
	case finished := <-done:
		if !finished {
			t.Error("expected finished=true")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not complete")
	}

	// updates is only written on the frame goroutine before done is sent
	if updates == 0 {
		t.Error("expected at least one update")
	}
}

type panicCapture struct {
	mu     sync.Mutex
	panics []*motionerrors.PanicError
}

func (p *panicCapture) HandleError(*motionerrors.Error) {}

func (p *panicCapture) HandlePanic(err *motionerrors.PanicError) {
	p.mu.Lock()
	p.panics = append(p.panics, err)
	p.mu.Unlock()
}

func (p *panicCapture) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.panics)
}

func TestDisplayLink_RecoversPanics(t *testing.T) {
	capture := &panicCapture{}
	prev := motionerrors.SetHandler(capture)
	defer motionerrors.SetHandler(prev)

	link := animation.NewDisplayLink(500)
	startLink(t, link)

	ran := make(chan struct{})
	link.Dispatch(func() { panic("dispatch failure") })
	link.Dispatch(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("callback after a panicking callback did not run")
	}
	if capture.count() != 1 {
		t.Errorf("expected 1 reported panic, got %d", capture.count())
	}
}
