package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
	"github.com/tartampluch/birthdays/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockSource simulates a record source for unit tests using `testify/mock`.
type MockSource struct {
	mock.Mock
}

// ListBirthdays implements the engine.RecordSource interface.
func (m *MockSource) ListBirthdays(ctx context.Context) ([]calendar.Record, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]calendar.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func newSource(records ...calendar.Record) *MockSource {
	src := new(MockSource)
	src.On("ListBirthdays", mock.Anything).Return(records, nil)
	return src
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_Success(t *testing.T) {
	src := newSource(calendar.Record{ID: "1", Name: "John Doe", BirthDate: "2000-01-01"})

	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		Source: src,
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)

	assert.Equal(t, 1, snap.TodayCount, "Should identify one birthday today")
	require.Len(t, snap.Result.Entries, 1)
	assert.Equal(t, "John Doe", snap.Result.Entries[0].Name)
	assert.Equal(t, 25, snap.Result.Entries[0].AgeNext)
	assert.Len(t, snap.Today(), 1)

	icsStr := string(snap.ICS)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: John Doe")
	assert.Contains(t, icsStr, "DTSTAMP:20250101T100000Z")
	src.AssertExpectations(t)
}

func TestRunSync_OrdersByProximity(t *testing.T) {
	src := newSource(
		calendar.Record{ID: "1", Name: "Past Birthday", BirthDate: "1990-01-01"},
		calendar.Record{ID: "2", Name: "Future Birthday", BirthDate: "1990-12-31"},
		calendar.Record{ID: "3", Name: "Today Birthday", BirthDate: "1990-06-01"},
	)

	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		Source: src,
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)

	var names []string
	for _, e := range snap.Result.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Today Birthday", "Future Birthday", "Past Birthday"}, names)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), snap.Result.Entries[2].NextOccurrence)
	assert.Len(t, snap.Upcoming(2), 2)
	assert.Len(t, snap.Upcoming(0), 3)
}

func TestRunSync_LeapDayPolicy(t *testing.T) {
	tests := []struct {
		name      string
		policy    calendar.LeapDayPolicy
		now       time.Time
		wantToday int
		wantDate  string
	}{
		{"Feb28", calendar.LeapDayFeb28, time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC), 1, "DTSTART;VALUE=DATE:20250228"},
		{"Mar1", calendar.LeapDayMar1, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 1, "DTSTART;VALUE=DATE:20250301"},
		{"LeapYear", calendar.LeapDayFeb28, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC), 1, "DTSTART;VALUE=DATE:20240229"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &engine.Generator{
				Clock:      MockClock{CurrentTime: tt.now},
				Source:     newSource(calendar.Record{ID: "1", Name: "Leap Baby", BirthDate: "2000-02-29"}),
				Calculator: calendar.Calculator{LeapDay: tt.policy},
			}

			snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantToday, snap.TodayCount)
			assert.Contains(t, string(snap.ICS), tt.wantDate)
		})
	}
}

func TestRunSync_PartialFailures(t *testing.T) {
	src := newSource(
		calendar.Record{ID: "1", Name: "Good", BirthDate: "1990-03-01"},
		calendar.Record{ID: "2", Name: "Missing"},
		calendar.Record{ID: "3", Name: "Garbage", BirthDate: "not-a-date"},
	)

	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Source: src,
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err, "Bad records must not fail the sync")

	require.Len(t, snap.Result.Entries, 1)
	require.Len(t, snap.Result.Failures, 2)
	assert.Equal(t, 1, snap.Result.Failures[0].Index)
	assert.ErrorIs(t, snap.Result.Failures[0], calendar.ErrMissingDate)
	assert.Equal(t, 2, snap.Result.Failures[1].Index)
	assert.ErrorIs(t, snap.Result.Failures[1], calendar.ErrDateFormat)
	assert.Equal(t, 3, strings.Count(string(snap.ICS), "BEGIN:VEVENT"))
}

func TestRunSync_SourceError(t *testing.T) {
	src := new(MockSource)
	expectedErr := errors.New("network unreachable")
	src.On("ListBirthdays", mock.Anything).Return(nil, expectedErr)

	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Now()},
		Source: src,
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), config.ErrRecordFetch)
	assert.Nil(t, snap)
}

func TestRunSync_MissingSource(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	_, err := gen.RunSync(context.Background(), engine.SyncConfig{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSourceMissing)
}

func TestRunSync_WithReminders(t *testing.T) {
	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Source: newSource(calendar.Record{ID: "1", Name: "Alarm Test", BirthDate: "1990-01-01"}),
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{ReminderTrigger: "-P1D"})
	require.NoError(t, err)

	icsStr := string(snap.ICS)
	assert.Contains(t, icsStr, "BEGIN:VALARM", "ICS should contain an alarm component")
	assert.Contains(t, icsStr, "TRIGGER:-P1D", "Alarm trigger should match configuration")
	assert.Contains(t, icsStr, "ACTION:DISPLAY", "Alarm action should be DISPLAY")
}

func TestRunSync_GeneratesYearRange(t *testing.T) {
	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Source: newSource(calendar.Record{ID: "1", Name: "Range Test", BirthDate: "1990-12-31"}),
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)

	icsStr := string(snap.ICS)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20241231", "Should include previous year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20251231", "Should include current year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20261231", "Should include next year")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRunSync_BabyBornThisYear(t *testing.T) {
	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Source: newSource(calendar.Record{ID: "1", Name: "Baby", BirthDate: "2025-05-01"}),
		FormatSummary: func(name string, age int, yearKnown bool) string {
			if age == 0 {
				return fmt.Sprintf("Birthday: %s (Birth)", name)
			}
			return fmt.Sprintf("Birthday: %s (%d)", name, age)
		},
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)

	icsStr := string(snap.ICS)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20240501", "Should NOT generate event before birth")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (Birth)")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (1)")
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRunSync_NoEvents_ReturnsStub(t *testing.T) {
	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Source: newSource(calendar.Record{ID: "1", Name: "Future Baby", BirthDate: "2027-01-01"}),
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)

	assert.Equal(t, config.StubVCalendar, string(snap.ICS))
	assert.Len(t, snap.Result.Entries, 1, "The list still shows the person")
	assert.Equal(t, 0, snap.Result.Entries[0].AgeNext)
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := new(MockSource)
	src.On("ListBirthdays", mock.Anything).Return(nil, context.Canceled)

	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: time.Now()},
		Source: src,
	}

	_, err := gen.RunSync(ctx, engine.SyncConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSync_UsesClockLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2025-06-14 20:00 UTC is already June 15 in Tokyo.
	now := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC).In(tokyo)

	gen := &engine.Generator{
		Clock:  MockClock{CurrentTime: now},
		Source: newSource(calendar.Record{ID: "1", Name: "Tokyo", BirthDate: "1980-06-15"}),
	}

	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TodayCount)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2030, 7, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, at, engine.FixedClock{T: at}.Now())
}

func TestRealClock_Location(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	assert.Equal(t, loc, engine.RealClock{Loc: loc}.Now().Location())
}
