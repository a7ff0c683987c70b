package calendar

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tartampluch/birthdays/internal/config"
)

// Record is a raw birthday as delivered by a record source.
// BirthDate is kept as text until it is annotated.
type Record struct {
	ID        string
	Name      string
	BirthDate string
}

// Entry is a Record annotated relative to a reference date.
// Entries are derived on every call and never persisted.
type Entry struct {
	Record

	Birth          BirthDate
	NextOccurrence time.Time
	DaysUntil      int
	IsToday        bool
	Countdown      string

	// AgeNext is the age reached at NextOccurrence, 0 when the year is unknown.
	AgeNext int
}

// ValidationError reports a record whose birth date could not be used.
// It never aborts the rest of a batch.
type ValidationError struct {
	Index int // position in the input slice, -1 outside a batch
	ID    string
	Name  string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q (id %s, value %q): %v", config.ErrInvalidRecord, e.Name, e.ID, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Result is the output of OrderByProximity: annotated entries in display
// order, plus one failure per record that could not be annotated.
type Result struct {
	Entries  []Entry
	Failures []*ValidationError
}

// Err joins all failures, or returns nil when every record was annotated.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Today returns the entries whose birthday is on the reference date.
func (r Result) Today() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.IsToday {
			break // today entries always lead
		}
		out = append(out, e)
	}
	return out
}

// Upcoming returns the first limit entries; limit <= 0 returns all of them.
func (r Result) Upcoming(limit int) []Entry {
	if limit <= 0 || limit >= len(r.Entries) {
		return r.Entries
	}
	return r.Entries[:limit]
}

// Annotate computes the derived fields of a single record.
// A missing or unparsable birth date yields a *ValidationError.
func (c Calculator) Annotate(rec Record, today time.Time) (Entry, error) {
	birth, err := ParseBirthDate(rec.BirthDate)
	if err != nil {
		return Entry{}, &ValidationError{
			Index: -1,
			ID:    rec.ID,
			Name:  rec.Name,
			Value: rec.BirthDate,
			Err:   err,
		}
	}

	t := Today(today)
	next := c.NextOccurrence(birth, t)
	days := daysBetween(t, next)

	return Entry{
		Record:         rec,
		Birth:          birth,
		NextOccurrence: next,
		DaysUntil:      days,
		IsToday:        days == 0,
		Countdown:      c.FormatCountdown(days, t, next),
		AgeNext:        AgeAt(birth, next),
	}, nil
}

// OrderByProximity annotates every record and sorts the entries by days
// until the next birthday. Birthdays today come first; ties keep the input
// order. The input slice is not modified.
func (c Calculator) OrderByProximity(records []Record, today time.Time) Result {
	res := Result{Entries: make([]Entry, 0, len(records))}

	for i, rec := range records {
		entry, err := c.Annotate(rec, today)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Index = i
				res.Failures = append(res.Failures, verr)
			}
			continue
		}
		res.Entries = append(res.Entries, entry)
	}

	slices.SortStableFunc(res.Entries, compareProximity)
	return res
}

// OrderByProximity uses the default Calculator.
func OrderByProximity(records []Record, today time.Time) Result {
	return Calculator{}.OrderByProximity(records, today)
}

func compareProximity(a, b Entry) int {
	if a.IsToday != b.IsToday {
		if a.IsToday {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.DaysUntil, b.DaysUntil)
}
