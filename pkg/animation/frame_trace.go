package animation

import (
	"sync"
	"time"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// FrameSample is a single run event captured by a [FrameTraceBuffer].
type FrameSample struct {
	Timestamp  int64   `json:"ts"`
	RunID      string  `json:"runId"`
	Event      string  `json:"event"`
	DeltaMs    float64 `json:"deltaMs"`
	ElapsedMs  float64 `json:"elapsedMs"`
	DurationMs float64 `json:"durationMs"`
	Fraction   float64 `json:"fraction"`
	Reversed   bool    `json:"reversed,omitempty"`
	Finished   bool    `json:"finished,omitempty"`
}

// FrameTimeline is a chronological view of the trace buffer.
type FrameTimeline struct {
	Samples       []FrameSample `json:"samples"`
	DroppedFrames int           `json:"droppedFrames"`
	ThresholdMs   float64       `json:"thresholdMs"`
}

// FrameTraceBuffer stores recent samples in a ring buffer. A frame whose
// delta exceeds the threshold is counted as dropped. It implements
// [RunListener] and is safe for concurrent use.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	samples   []FrameSample
	index     int
	count     int
	dropped   int
	threshold time.Duration
}

// NewFrameTraceBuffer creates a new frame trace buffer.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	if capacity <= 0 {
		capacity = frameTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	return &FrameTraceBuffer{
		samples:   make([]FrameSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *FrameTraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// SetThreshold updates the dropped frame threshold.
func (b *FrameTraceBuffer) SetThreshold(threshold time.Duration) {
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	b.mu.Lock()
	b.threshold = threshold
	b.mu.Unlock()
}

// Threshold returns the dropped frame threshold.
func (b *FrameTraceBuffer) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a sample and updates the dropped frame count.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDelta time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	if frameDelta > b.threshold {
		b.dropped++
	}
	b.mu.Unlock()
}

// OnRunEvent records event as a sample.
func (b *FrameTraceBuffer) OnRunEvent(event RunEvent) {
	b.Add(FrameSample{
		Timestamp:  event.At.UnixNano(),
		RunID:      event.RunID.String(),
		Event:      event.Kind.String(),
		DeltaMs:    durationToMillis(event.Delta),
		ElapsedMs:  durationToMillis(event.Elapsed),
		DurationMs: durationToMillis(event.Duration),
		Fraction:   event.Fraction,
		Reversed:   event.Reversed,
		Finished:   event.Finished,
	}, event.Delta)
}

// Snapshot returns a chronological copy of samples and stats.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return FrameTimeline{ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]FrameSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return FrameTimeline{
		Samples:       result,
		DroppedFrames: b.dropped,
		ThresholdMs:   durationToMillis(b.threshold),
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
