package animation

import "time"

// Clock provides time for animations and timers. The default
// implementation uses system time. Tests inject a fake clock through
// [NewScheduler] to control timing deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock uses system time.
type SystemClock struct{}

// Now returns the wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
