package discipline

import "time"

// Clock abstracts wall-clock reads and one-shot timers so the guard's
// midnight transition can be driven by a simulated clock in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending one-shot callback. Stop reports whether the callback
// was cancelled before firing.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }
