package animation

import (
	"context"
	"sync"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// DefaultRefreshRate is the frame rate used when a DisplayLink is created
// without one.
const DefaultRefreshRate = 120.0

// DisplayLink drives a [FrameScheduler] from a real-time ticker, standing in
// for a platform display refresh callback. All frames and dispatched
// callbacks run on the goroutine that calls Run, which acts as the UI
// goroutine for runners subscribed to Source.
type DisplayLink struct {
	scheduler *FrameScheduler
	interval  time.Duration

	dispatchMu    sync.Mutex
	dispatchQueue []func()
}

// NewDisplayLink creates a display link ticking refreshRate times per second.
// Rates without a usable frame length (see [FrameLength]) use
// DefaultRefreshRate.
func NewDisplayLink(refreshRate float64) *DisplayLink {
	interval := FrameLength(refreshRate)
	if interval <= 0 {
		interval = FrameLength(DefaultRefreshRate)
	}
	return &DisplayLink{
		scheduler: NewFrameScheduler(),
		interval:  interval,
	}
}

// Interval returns the nominal time between frames.
func (d *DisplayLink) Interval() time.Duration {
	return d.interval
}

// Source returns the frame source runners should subscribe to.
func (d *DisplayLink) Source() FrameSource {
	return d.scheduler
}

// SetInteracting forwards to the underlying scheduler.
func (d *DisplayLink) SetInteracting(interacting bool) {
	d.scheduler.SetInteracting(interacting)
}

// Dispatch queues fn to run on the frame goroutine before the next frame.
func (d *DisplayLink) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	d.dispatchMu.Lock()
	d.dispatchQueue = append(d.dispatchQueue, fn)
	d.dispatchMu.Unlock()
}

func (d *DisplayLink) drainDispatchQueue() []func() {
	d.dispatchMu.Lock()
	callbacks := d.dispatchQueue
	d.dispatchQueue = nil
	d.dispatchMu.Unlock()
	return callbacks
}

// Run ticks until ctx is done and returns ctx.Err(). A panic inside a
// dispatched callback or a frame handler is reported through
// errors.ReportPanic and the loop continues with the next frame.
func (d *DisplayLink) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.frame()
		}
	}
}

func (d *DisplayLink) frame() {
	for _, callback := range d.drainDispatchQueue() {
		runRecovered("animation.DisplayLink.dispatch", callback)
	}
	runRecovered("animation.DisplayLink.frame", func() {
		d.scheduler.StepNow()
	})
}

func runRecovered(op string, fn func()) {
	defer errors.Recover(op)
	fn()
}
