package common

import "time"

// DateLayout is the ISO calendar date layout used for every game key.
const DateLayout = "2006-01-02"

// Clock abstracts the wall clock so "today" can be pinned in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.T }

// Today returns the calendar date of clock in loc as YYYY-MM-DD.
// A nil loc means UTC.
func Today(clock Clock, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return clock.Now().In(loc).Format(DateLayout)
}
