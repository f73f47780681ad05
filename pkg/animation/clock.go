package animation

import "time"

// Clock is the engine's wall clock. Layers carry their own time base for
// progress; the package clock stamps tickers and anything without a live
// target. Tests inject a fake through SetClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var clock Clock = systemClock{}

// SetClock replaces the package clock and returns the previous one. A nil
// clock restores the system clock.
func SetClock(c Clock) Clock {
	prev := clock
	if c == nil {
		c = systemClock{}
	}
	clock = c
	return prev
}

// Now reads the package clock.
func Now() time.Time { return clock.Now() }
