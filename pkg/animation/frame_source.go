package animation

import (
	"fmt"
	"time"
)

// FrameHandler receives the time elapsed since the previous frame.
// The delta is always a non-negative magnitude.
type FrameHandler func(dt time.Duration)

// RunMode selects when a subscription receives frames.
type RunMode int

const (
	// ModeCommon delivers every frame, including while the source is in an
	// interactive state such as a scroll or drag.
	ModeCommon RunMode = iota
	// ModeDefault skips frames while the source is interacting.
	ModeDefault
)

// String returns a human-readable representation of the run mode.
func (m RunMode) String() string {
	switch m {
	case ModeCommon:
		return "common"
	case ModeDefault:
		return "default"
	default:
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
}

// Subscription is a live registration with a [FrameSource].
type Subscription interface {
	// Cancel detaches the handler. No frames are delivered after Cancel
	// returns. Calling Cancel more than once is a no-op.
	Cancel()
	// Active reports whether the subscription still receives frames.
	Active() bool
}

// FrameSource delivers per-frame callbacks, standing in for the platform
// display refresh clock.
type FrameSource interface {
	Subscribe(h FrameHandler, mode RunMode) Subscription
}
