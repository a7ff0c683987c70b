package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Generator reads it once per sync to decide what "today" is.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
// Loc, when set, moves the reading into that zone so "today" follows it.
type RealClock struct {
	Loc *time.Location
}

// Now returns the current time, in Loc when configured.
func (c RealClock) Now() time.Time {
	if c.Loc != nil {
		return time.Now().In(c.Loc)
	}
	return time.Now()
}

// FixedClock always reports the same instant. The CLI uses it for --today.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}
