// Package clock abstracts the time source so that sync metadata stamps,
// event transitions and scheduler slots can be tested deterministically.
package clock

import "time"

// Clock is the time source injected into code that would otherwise call
// time.Now or time.After directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Millis returns t as epoch milliseconds, the unit of every persisted timestamp.
func Millis(t time.Time) int64 { return t.UnixMilli() }
