package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
)

// SyncConfig contains the per-sync parameters.
type SyncConfig struct {
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D"), empty for no alarm
}

// Snapshot is the outcome of one synchronization: the annotated birthday
// list and the calendar feed built from it.
type Snapshot struct {
	ICS         []byte
	Result      calendar.Result
	TodayCount  int
	GeneratedAt time.Time
}

// Upcoming returns the first limit entries; limit <= 0 returns all of them.
func (s *Snapshot) Upcoming(limit int) []calendar.Entry {
	return s.Result.Upcoming(limit)
}

// Today returns the entries whose birthday is today.
func (s *Snapshot) Today() []calendar.Entry {
	return s.Result.Today()
}

// Generator is the core service responsible for fetching and converting data.
type Generator struct {
	Clock      Clock        // Interface for time mocking; nil means RealClock.
	Source     RecordSource // Where the birthday records come from.
	Calculator calendar.Calculator

	// FormatSummary allows the caller to inject localized event titles.
	FormatSummary func(name string, age int, yearKnown bool) string
}

// RunSync fetches the records, orders them by proximity and renders the
// iCalendar feed. Records with unusable dates are reported in
// Snapshot.Result.Failures and do not fail the sync.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*Snapshot, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.InfoContext(ctx, config.MsgSyncStarted)

	if g.Source == nil {
		return nil, errors.New(config.ErrSourceMissing)
	}

	records, err := g.Source.ListBirthdays(ctx)
	if err != nil {
		// If context error occurred during acquisition, return it directly.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrRecordFetch, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := g.now()
	result := g.Calculator.OrderByProximity(records, now)
	for _, f := range result.Failures {
		log.Warn(config.MsgSkippedRecord,
			config.LogKeyID, f.ID,
			config.LogKeyName, f.Name,
			config.LogKeyValue, f.Value,
			config.LogKeyError, f.Err,
		)
	}

	ics, err := g.buildCalendar(result.Entries, now, cfg.ReminderTrigger)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ICS:         ics,
		Result:      result,
		TodayCount:  len(result.Today()),
		GeneratedAt: now,
	}

	log.Info(config.MsgGenSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(records)),
			slog.Int(config.LogKeyFound, len(result.Entries)),
			slog.Int(config.LogKeyFailed, len(result.Failures)),
			slog.Int(config.LogKeyToday, snap.TodayCount),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return snap, nil
}

func (g *Generator) now() time.Time {
	if g.Clock == nil {
		return RealClock{}.Now()
	}
	return g.Clock.Now()
}

// buildCalendar constructs the iCalendar object for the annotated entries.
func (g *Generator) buildCalendar(entries []calendar.Entry, now time.Time, reminderTrigger string) ([]byte, error) {
	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// "Today" follows the local calendar date; only the stamp is UTC.
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, entry := range entries {
		if entry.IsToday {
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, entry.Name,
				config.LogKeyDOB, entry.Birth.String())
		}

		for _, e := range g.createEvents(entry, now, reminderTrigger) {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// Calendar clients flag a VCALENDAR without components as invalid.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// createEvents generates all-day events for the previous, current and next
// year, never before the birth year.
func (g *Generator) createEvents(entry calendar.Entry, now time.Time, reminderTrigger string) []*ical.Event {
	currentYear := calendar.Today(now).Year()
	uidBase := recordUID(entry.Name, entry.Birth.String())

	var events []*ical.Event
	for y := currentYear - 1; y <= currentYear+1; y++ {
		if entry.Birth.YearKnown() && y < entry.Birth.Year {
			continue
		}

		eventDate := g.Calculator.OccurrenceIn(entry.Birth, y)
		age := calendar.AgeAt(entry.Birth, eventDate)
		summary := g.summary(entry.Name, age, entry.Birth.YearKnown())

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events
}

func (g *Generator) summary(name string, age int, yearKnown bool) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, age, yearKnown)
	}
	return fmt.Sprintf(config.FallbackSummary, name)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value: SetText would add a VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
