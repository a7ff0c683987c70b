package calendar

import (
	"fmt"
	"time"

	"github.com/tartampluch/birthdays/internal/config"
)

// LeapDayPolicy decides where a Feb 29 birthday falls in non-leap years.
type LeapDayPolicy int

const (
	// LeapDayFeb28 celebrates on Feb 28, keeping the birthday in February.
	LeapDayFeb28 LeapDayPolicy = iota
	// LeapDayMar1 celebrates on Mar 1, the day after Feb 28.
	LeapDayMar1
)

// ParseLeapDayPolicy maps a configuration value to a policy.
func ParseLeapDayPolicy(s string) (LeapDayPolicy, error) {
	switch s {
	case config.LeapDayFeb28, "":
		return LeapDayFeb28, nil
	case config.LeapDayMar1:
		return LeapDayMar1, nil
	default:
		return LeapDayFeb28, fmt.Errorf("%s: %q", config.ErrLeapDayUnsupport, s)
	}
}

func (p LeapDayPolicy) String() string {
	if p == LeapDayMar1 {
		return config.LeapDayMar1
	}
	return config.LeapDayFeb28
}

// Calculator bundles the options of the birthday computations.
// The zero value uses LeapDayFeb28 and English countdowns.
type Calculator struct {
	LeapDay LeapDayPolicy

	// Countdown phrases a Span for display; nil means English.
	Countdown CountdownFormatter
}

// OccurrenceIn returns the date the birthday falls on in the given year.
func (c Calculator) OccurrenceIn(b BirthDate, year int) time.Time {
	month, dayOfMonth := b.Month, b.Day
	if month == time.February && dayOfMonth == 29 && !isLeap(year) {
		if c.LeapDay == LeapDayMar1 {
			month, dayOfMonth = time.March, 1
		} else {
			dayOfMonth = 28
		}
	}
	return civil(year, month, dayOfMonth)
}

// NextOccurrence returns the soonest occurrence on or after today.
// The result is never more than 366 days ahead.
func (c Calculator) NextOccurrence(b BirthDate, today time.Time) time.Time {
	t := Today(today)
	next := c.OccurrenceIn(b, t.Year())
	if next.Before(t) {
		next = c.OccurrenceIn(b, t.Year()+1)
	}
	return next
}

// DaysUntil returns the whole days from today to the next occurrence.
// Zero means the birthday is today.
func (c Calculator) DaysUntil(b BirthDate, today time.Time) int {
	return daysBetween(Today(today), c.NextOccurrence(b, today))
}

// FormatCountdown phrases the distance between today and next.
func (c Calculator) FormatCountdown(daysUntil int, today, next time.Time) string {
	f := c.Countdown
	if f == nil {
		f = English
	}
	if daysUntil <= 0 {
		return f.FormatSpan(Span{})
	}
	return f.FormatSpan(Between(today, next))
}

// AgeAt returns the age reached on the given occurrence, or 0 when the
// year is unknown or the occurrence predates the birth.
func AgeAt(b BirthDate, occurrence time.Time) int {
	if !b.YearKnown() {
		return 0
	}
	return max(occurrence.Year()-b.Year, 0)
}

// NextOccurrence uses the default Calculator.
func NextOccurrence(b BirthDate, today time.Time) time.Time {
	return Calculator{}.NextOccurrence(b, today)
}

// DaysUntil uses the default Calculator.
func DaysUntil(b BirthDate, today time.Time) int {
	return Calculator{}.DaysUntil(b, today)
}

// FormatCountdown uses the default Calculator.
func FormatCountdown(daysUntil int, today, next time.Time) string {
	return Calculator{}.FormatCountdown(daysUntil, today, next)
}
