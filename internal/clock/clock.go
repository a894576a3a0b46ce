// Package clock supplies "today" in the venue's wall-clock time.
package clock

import "time"

// DateLayout is the calendar date format used everywhere reservations are stored.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in a fixed location.
type RealClock struct {
	Location *time.Location
}

func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Fixed always returns the same instant. Used by tests and by tools that
// need a reproducible "today".
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Today returns midnight of the current day in the clock's location.
func Today(c Clock) time.Time {
	return Midnight(c.Now())
}

// Midnight truncates t to the start of its calendar day, keeping its location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BeforeDay reports whether a falls on an earlier calendar day than b.
func BeforeDay(a, b time.Time) bool {
	return Midnight(a).Before(Midnight(b.In(a.Location())))
}
