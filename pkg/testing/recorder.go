package testing

import "sync"

// ProgressRecorder is an animation.ProgressObserver that records every
// notification it receives. All methods are safe for concurrent use.
type ProgressRecorder struct {
	mu          sync.Mutex
	updates     []float64
	completions []bool
}

// Update records fraction.
func (r *ProgressRecorder) Update(fraction float64) {
	r.mu.Lock()
	r.updates = append(r.updates, fraction)
	r.mu.Unlock()
}

// Complete records finished.
func (r *ProgressRecorder) Complete(finished bool) {
	r.mu.Lock()
	r.completions = append(r.completions, finished)
	r.mu.Unlock()
}

// Updates returns a copy of the recorded fractions in order.
func (r *ProgressRecorder) Updates() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.updates...)
}

// Completions returns a copy of the recorded completion flags in order.
func (r *ProgressRecorder) Completions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.completions...)
}

// Reset clears all recorded notifications.
func (r *ProgressRecorder) Reset() {
	r.mu.Lock()
	r.updates = nil
	r.completions = nil
	r.mu.Unlock()
}
