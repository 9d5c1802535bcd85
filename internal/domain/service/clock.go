package service

import "time"

// Clock supplies the current time. Expiry comparisons go through this
// interface so tests can pin the clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock returns the default Clock implementation.
func NewSystemClock() Clock {
	return SystemClock{}
}
