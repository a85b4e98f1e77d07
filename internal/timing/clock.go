package timing

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks. Every suspension point in playback goes through
// a Clock so tests can drive it with virtual time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// systemClock adapts the wall clock.
type systemClock struct {
	c clock.Clock
}

// System returns a Clock backed by the real time source.
func System() Clock {
	return systemClock{c: clock.New()}
}

// OrSystem returns c, or the system clock when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System()
	}
	return c
}

func (s systemClock) Now() time.Time {
	return s.c.Now()
}

func (s systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return s.c.AfterFunc(d, f)
}
