package animation

import (
	"sync"
	"time"
)

// Clock provides time for frame sources. The default implementation uses
// system time. Tests can inject a fake clock via SetClock to control
// frame deltas deterministically.
type Clock interface {
	Now() time.Time
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

var (
	clockMu sync.RWMutex
	// clock is the package-level time source, replaceable for testing.
	clock Clock = realClock{}
)

// SetClock replaces the animation clock. Returns the previous clock
// so callers can restore it during cleanup. Passing nil restores
// system time.
func SetClock(c Clock) Clock {
	if c == nil {
		c = realClock{}
	}
	clockMu.Lock()
	defer clockMu.Unlock()
	prev := clock
	clock = c
	return prev
}

// Now returns the current time from the active clock.
func Now() time.Time {
	clockMu.RLock()
	c := clock
	clockMu.RUnlock()
	return c.Now()
}
