// Package calendar computes upcoming birthday occurrences, countdowns and a
// proximity ordering over birthday records.
//
// Every function takes an explicit reference date ("today") and never reads
// the system clock, so identical inputs always produce identical outputs.
// Dates are civil dates represented as time.Time values at UTC midnight;
// this keeps day arithmetic exact across DST transitions.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/birthdays/internal/config"
)

// Sentinel causes wrapped by ValidationError.
var (
	ErrMissingDate = errors.New(config.ErrDateMissing)
	ErrDateFormat  = errors.New(config.ErrDateFormat)
	ErrDateRange   = errors.New(config.ErrDateRange)
)

const day = 24 * time.Hour

// BirthDate is a parsed birth date. Year is zero when the source only
// carries a month and day (vCard "--MM-DD").
//
// Feb 29 is accepted for any year: the month/day pair is a recurrence key
// and the year only feeds the age.
type BirthDate struct {
	Year  int
	Month time.Month
	Day   int
}

// YearKnown reports whether the birth year is available.
func (b BirthDate) YearKnown() bool {
	return b.Year != 0
}

// String formats the date as ISO 8601, or "--MM-DD" when the year is unknown.
func (b BirthDate) String() string {
	if !b.YearKnown() {
		return fmt.Sprintf("--%02d-%02d", int(b.Month), b.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", b.Year, int(b.Month), b.Day)
}

// Validate checks the month/day pair against a leap year and the year range.
func (b BirthDate) Validate() error {
	if b.Year < 0 || b.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrDateRange, b.Year)
	}
	if b.Month < time.January || b.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrDateRange, int(b.Month))
	}
	if b.Day < 1 || b.Day > daysIn(config.DefaultLeapYear, b.Month) {
		return fmt.Errorf("%w: day %d of %s", ErrDateRange, b.Day, b.Month)
	}
	return nil
}

// Today truncates t to its civil date in t's own location.
// The result is at UTC midnight.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return civil(y, m, d)
}

func civil(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysBetween returns the whole days from one civil date to another.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / day)
}
