package animation

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/motion/pkg/errors"
)

// DefaultTolerance is the boundary tolerance used when a runner has none
// set: the length of one frame at 120 Hz.
const DefaultTolerance = time.Second / 120

var (
	// ErrInvalidDuration is returned by Start when duration is not positive.
	ErrInvalidDuration = stderrors.New("duration must be positive")
	// ErrInvalidElapsed is returned by Start when elapsed is negative.
	ErrInvalidElapsed = stderrors.New("elapsed must not be negative")
)

// FrameLength returns the length of one frame at hz frames per second. It
// returns 0 when hz is not positive or so high that a frame is shorter than
// a nanosecond.
func FrameLength(hz float64) time.Duration {
	if !(hz > 0) {
		return 0
	}
	length := float64(time.Second) / hz
	if length < 1 {
		return 0
	}
	return time.Duration(length)
}

// ToleranceForRate returns the length of one frame at hz frames per second.
// Rates without a usable frame length return DefaultTolerance.
func ToleranceForRate(hz float64) time.Duration {
	if length := FrameLength(hz); length > 0 {
		return length
	}
	return DefaultTolerance
}

// RunStatus is the state of a [ProgressRunner].
//
//	        Start()
//	Idle ──────────────► Running ──┐ tick (update)
//	 ▲                      │  ▲   │
//	 │  Stop() / boundary   │  └───┘
//	 └──────────────────────┘
//
// There is no paused state: pausing is Stop, and resuming is Start with the
// elapsed value read back from [ProgressRunner.Elapsed].
type RunStatus int

const (
	// StatusIdle means no frame subscription is held.
	StatusIdle RunStatus = iota
	// StatusRunning means the runner is advancing on every frame.
	StatusRunning
)

// String returns a human-readable representation of the run status.
func (s RunStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	default:
		return fmt.Sprintf("RunStatus(%d)", int(s))
	}
}

// ProgressRunner advances an elapsed time on every frame of a [FrameSource]
// and reports the elapsed fraction of a fixed duration to an observer.
//
// A forward run counts up from the starting elapsed value and completes with
// finished=true once it is within Tolerance of the duration. A reversed run
// counts down and completes with finished=false once it is within Tolerance
// of zero. The runner unsubscribes from the frame source before the
// completion is delivered, so observers may call Stop or Start from inside
// Update and Complete.
//
// ProgressRunner is not safe for concurrent use. Call it from the goroutine
// that drives its frame source (see [DisplayLink.Dispatch]).
type ProgressRunner struct {
	// Tolerance is the distance from a boundary at which a run completes.
	// Zero means DefaultTolerance.
	Tolerance time.Duration

	// Mode is the run mode used for the frame subscription. The zero value,
	// ModeCommon, keeps frames arriving during interaction.
	Mode RunMode

	// Events receives run events (optional).
	Events RunListener

	source   FrameSource
	observer ObserverRef
	sub      Subscription
	gen      uint64

	runID    uuid.UUID
	elapsed  time.Duration
	duration time.Duration
	reversed bool
}

// NewProgressRunner creates an idle runner that subscribes to source.
func NewProgressRunner(source FrameSource) *ProgressRunner {
	return &ProgressRunner{source: source}
}

// SetObserver sets the observer reference. Use [Weak] to avoid keeping the
// observer alive. Pass nil to stop notifying.
func (r *ProgressRunner) SetObserver(ref ObserverRef) {
	r.observer = ref
}

// Start begins a run. Any current run is stopped first. elapsed is the
// starting offset, which lets a caller resume a partially completed run in
// either direction.
//
// Start returns a KindInvalidArgument error wrapping ErrInvalidDuration or
// ErrInvalidElapsed for out-of-range arguments; the current run is left
// untouched in that case.
func (r *ProgressRunner) Start(elapsed, duration time.Duration, reversed bool) error {
	const op = "animation.ProgressRunner.Start"
	if duration <= 0 {
		return errors.InvalidArgument(op, fmt.Errorf("%w: got %v", ErrInvalidDuration, duration))
	}
	if elapsed < 0 {
		return errors.InvalidArgument(op, fmt.Errorf("%w: got %v", ErrInvalidElapsed, elapsed))
	}

	r.Stop()

	r.elapsed = elapsed
	r.duration = duration
	r.reversed = reversed
	r.runID = uuid.New()
	r.gen++

	gen := r.gen
	r.sub = r.source.Subscribe(func(dt time.Duration) {
		r.tick(gen, dt)
	}, r.Mode)

	r.emit(RunStarted, 0, false)
	return nil
}

// Stop ends the current run without notifying the observer. It is a no-op
// when the runner is idle.
func (r *ProgressRunner) Stop() {
	if r.sub == nil {
		return
	}
	r.detach()
	r.emit(RunStopped, 0, false)
}

func (r *ProgressRunner) detach() {
	sub := r.sub
	r.sub = nil
	sub.Cancel()
}

// IsRunning returns true while a frame subscription is held.
func (r *ProgressRunner) IsRunning() bool {
	return r.sub != nil
}

// Status returns the current run status.
func (r *ProgressRunner) Status() RunStatus {
	if r.IsRunning() {
		return StatusRunning
	}
	return StatusIdle
}

// Elapsed returns the accumulated time of the current or last run.
func (r *ProgressRunner) Elapsed() time.Duration {
	return r.elapsed
}

// Duration returns the duration of the current or last run.
func (r *ProgressRunner) Duration() time.Duration {
	return r.duration
}

// Reversed returns the direction of the current or last run.
func (r *ProgressRunner) Reversed() bool {
	return r.reversed
}

// Fraction returns Elapsed divided by Duration, or 0 before the first run.
func (r *ProgressRunner) Fraction() float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(r.elapsed) / float64(r.duration)
}

// RunID identifies the current or last run.
func (r *ProgressRunner) RunID() uuid.UUID {
	return r.runID
}

// RunnerSnapshot is a point-in-time copy of a runner's state.
type RunnerSnapshot struct {
	RunID      string  `json:"runId,omitempty"`
	Status     string  `json:"status"`
	ElapsedMs  float64 `json:"elapsedMs"`
	DurationMs float64 `json:"durationMs"`
	Fraction   float64 `json:"fraction"`
	Reversed   bool    `json:"reversed"`
}

// Snapshot returns the runner's current state.
func (r *ProgressRunner) Snapshot() RunnerSnapshot {
	snap := RunnerSnapshot{
		Status:     r.Status().String(),
		ElapsedMs:  durationToMillis(r.elapsed),
		DurationMs: durationToMillis(r.duration),
		Fraction:   r.Fraction(),
		Reversed:   r.reversed,
	}
	if r.runID != uuid.Nil {
		snap.RunID = r.runID.String()
	}
	return snap
}

func (r *ProgressRunner) tolerance() time.Duration {
	if r.Tolerance > 0 {
		return r.Tolerance
	}
	return DefaultTolerance
}

func (r *ProgressRunner) tick(gen uint64, dt time.Duration) {
	// Ignore frames for a run that has already ended or been replaced
	if gen != r.gen || r.sub == nil {
		return
	}
	if dt < 0 {
		dt = -dt
	}

	if r.reversed {
		r.elapsed -= dt
	} else {
		r.elapsed += dt
	}

	tolerance := r.tolerance()
	if r.reversed && r.elapsed <= tolerance {
		r.complete(dt, false)
		return
	}
	if !r.reversed && r.elapsed > r.duration-tolerance {
		r.complete(dt, true)
		return
	}

	fraction := float64(r.elapsed) / float64(r.duration)
	r.emit(RunUpdated, dt, false)
	if o := r.currentObserver(); o != nil {
		o.Update(fraction)
	}
}

func (r *ProgressRunner) complete(dt time.Duration, finished bool) {
	r.detach()
	r.emit(RunCompleted, dt, finished)
	if o := r.currentObserver(); o != nil {
		o.Complete(finished)
	}
}

func (r *ProgressRunner) currentObserver() ProgressObserver {
	if r.observer == nil {
		return nil
	}
	return r.observer.Observer()
}

func (r *ProgressRunner) emit(kind RunEventKind, dt time.Duration, finished bool) {
	if r.Events == nil {
		return
	}
	r.Events.OnRunEvent(RunEvent{
		RunID:    r.runID,
		Kind:     kind,
		At:       Now(),
		Delta:    dt,
		Elapsed:  r.elapsed,
		Duration: r.duration,
		Fraction: r.Fraction(),
		Reversed: r.reversed,
		Finished: finished,
	})
}
