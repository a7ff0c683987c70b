package calendar

import (
	"fmt"
	"time"
)

// Span is a calendar distance in whole months plus remaining days.
// The zero Span means "today".
type Span struct {
	Months int
	Days   int
}

// IsZero reports whether the span is empty.
func (s Span) IsZero() bool {
	return s.Months == 0 && s.Days == 0
}

// CountdownFormatter phrases a Span for display.
type CountdownFormatter interface {
	FormatSpan(Span) string
}

// Between walks the calendar from one date to another, one month at a time
// while a whole month still fits, and counts the rest in real days.
// Month steps keep the day of month of from, clamped to the target month
// length. A to before from yields the zero Span.
func Between(from, to time.Time) Span {
	from, to = Today(from), Today(to)
	if !to.After(from) {
		return Span{}
	}

	months := 0
	for !addMonthsClamped(from, months+1).After(to) {
		months++
	}
	return Span{
		Months: months,
		Days:   daysBetween(addMonthsClamped(from, months), to),
	}
}

// addMonthsClamped adds n months without spilling into the following
// month: Jan 31 + 1 month is Feb 28 (or 29), not Mar 3.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := civil(y, m+time.Month(n), 1)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return civil(first.Year(), first.Month(), d)
}

type englishCountdown struct{}

// English is the built-in formatter: "today", "in 11 days",
// "in 3 months", "in 3 months and 14 days".
var English CountdownFormatter = englishCountdown{}

func (englishCountdown) FormatSpan(s Span) string {
	switch {
	case s.IsZero():
		return "today"
	case s.Months == 0:
		return "in " + plural(s.Days, "day")
	case s.Days == 0:
		return "in " + plural(s.Months, "month")
	default:
		return "in " + plural(s.Months, "month") + " and " + plural(s.Days, "day")
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
