package animation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunEventKind identifies what happened to a run.
type RunEventKind int

const (
	// RunStarted is emitted by a successful Start.
	RunStarted RunEventKind = iota
	// RunUpdated is emitted for every tick that does not cross a boundary.
	RunUpdated
	// RunCompleted is emitted when a boundary is reached.
	RunCompleted
	// RunStopped is emitted when a running run is stopped from outside.
	RunStopped
)

// String returns a human-readable representation of the event kind.
func (k RunEventKind) String() string {
	switch k {
	case RunStarted:
		return "started"
	case RunUpdated:
		return "update"
	case RunCompleted:
		return "completed"
	case RunStopped:
		return "stopped"
	default:
		return fmt.Sprintf("RunEventKind(%d)", int(k))
	}
}

// RunEvent describes a state change of a [ProgressRunner]. Listeners use it
// for tracing, logging, and metrics; it is separate from the observer
// contract.
type RunEvent struct {
	RunID    uuid.UUID
	Kind     RunEventKind
	At       time.Time
	Delta    time.Duration
	Elapsed  time.Duration
	Duration time.Duration
	Fraction float64
	Reversed bool
	// Finished is the completion flag; only meaningful for RunCompleted.
	Finished bool
}

// RunListener receives [RunEvent]s.
type RunListener interface {
	OnRunEvent(event RunEvent)
}

// RunListenerFunc adapts a function to [RunListener].
type RunListenerFunc func(event RunEvent)

// OnRunEvent calls f(event).
func (f RunListenerFunc) OnRunEvent(event RunEvent) { f(event) }

// MultiListener fans out events to multiple listeners.
type MultiListener struct {
	listeners []RunListener
}

// NewMultiListener creates a MultiListener that forwards events to all
// non-nil listeners.
func NewMultiListener(listeners ...RunListener) *MultiListener {
	filtered := make([]RunListener, 0, len(listeners))
	for _, l := range listeners {
		if l != nil {
			filtered = append(filtered, l)
		}
	}
	return &MultiListener{listeners: filtered}
}

// OnRunEvent forwards event to every listener in order.
func (m *MultiListener) OnRunEvent(event RunEvent) {
	for _, l := range m.listeners {
		l.OnRunEvent(event)
	}
}
