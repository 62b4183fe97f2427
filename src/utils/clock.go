package utils

import "time"

// -----------------------------------------------------------------------------
// Clock abstracts wall time and timers so TTLs and reconnect delays can be
// driven deterministically in tests.
// -----------------------------------------------------------------------------

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of *time.Timer used by callers
type Timer interface {
	Stop() bool
}

// -----------------------------------------------------------------------------

// RealClock is backed by the time package
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
