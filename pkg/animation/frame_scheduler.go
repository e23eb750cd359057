package animation

import (
	"sync"
	"sync/atomic"
	"time"
)

// FrameScheduler is an in-process [FrameSource]. Something that owns the
// frame loop (a [DisplayLink], an engine, a test) calls Step or StepNow once
// per frame and every active subscription receives the delta.
//
// Subscribe and Cancel may be called from any goroutine, including from
// inside a handler during a step. Handlers themselves run on whichever
// goroutine calls Step.
type FrameScheduler struct {
	mu          sync.Mutex
	subs        []*frameSubscription
	interacting bool
	lastStep    time.Time
}

type frameSubscription struct {
	owner   *FrameScheduler
	handler FrameHandler
	mode    RunMode
	active  atomic.Bool
}

// NewFrameScheduler creates a scheduler with no subscriptions.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Subscribe registers h to receive frames. Frames already being delivered
// when Subscribe is called are not delivered to h.
func (s *FrameScheduler) Subscribe(h FrameHandler, mode RunMode) Subscription {
	sub := &frameSubscription{owner: s, handler: h, mode: mode}
	sub.active.Store(true)
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

func (sub *frameSubscription) Cancel() {
	if !sub.active.Swap(false) {
		return
	}
	sub.owner.remove(sub)
}

func (sub *frameSubscription) Active() bool {
	return sub.active.Load()
}

func (s *FrameScheduler) remove(sub *frameSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// SetInteracting marks the source as being in a transient interactive state.
// While set, ModeDefault subscriptions are skipped.
func (s *FrameScheduler) SetInteracting(interacting bool) {
	s.mu.Lock()
	s.interacting = interacting
	s.mu.Unlock()
}

// Step delivers one frame with the given delta and returns how many handlers
// ran. Negative deltas are clamped to zero.
func (s *FrameScheduler) Step(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return 0
	}
	// Copy so handlers can subscribe or cancel without holding the lock
	subs := append([]*frameSubscription(nil), s.subs...)
	interacting := s.interacting
	s.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if !sub.active.Load() || sub.handler == nil {
			continue
		}
		if interacting && sub.mode == ModeDefault {
			continue
		}
		sub.handler(dt)
		delivered++
	}
	return delivered
}

// StepNow delivers one frame whose delta is the time since the previous
// StepNow, measured with the package [Clock]. The first call delivers zero.
func (s *FrameScheduler) StepNow() int {
	now := Now()
	s.mu.Lock()
	var dt time.Duration
	if !s.lastStep.IsZero() {
		dt = now.Sub(s.lastStep)
	}
	s.lastStep = now
	s.mu.Unlock()
	return s.Step(dt)
}

// Len returns the number of active subscriptions.
func (s *FrameScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// HasSubscribers returns true if any subscription is active.
func (s *FrameScheduler) HasSubscribers() bool {
	return s.Len() > 0
}
