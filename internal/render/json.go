package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
)

// EntryJSON is the JSON form of an annotated birthday, shared by the CLI
// and the HTTP feed.
type EntryJSON struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BirthDate      string `json:"birthdate"`
	NextOccurrence string `json:"next_occurrence"`
	DaysUntil      int    `json:"days_until"`
	IsToday        bool   `json:"is_today"`
	Countdown      string `json:"countdown"`
	AgeNext        *int   `json:"age_next"` // null when the birth year is unknown
}

// Entries converts annotated entries, keeping their order.
func Entries(entries []calendar.Entry) []EntryJSON {
	out := make([]EntryJSON, len(entries))
	for i, e := range entries {
		out[i] = EntryJSON{
			ID:             e.ID,
			Name:           e.Name,
			BirthDate:      e.Birth.String(),
			NextOccurrence: e.NextOccurrence.Format(config.DateFormatISO),
			DaysUntil:      e.DaysUntil,
			IsToday:        e.IsToday,
			Countdown:      e.Countdown,
		}
		if e.Birth.YearKnown() {
			age := e.AgeNext
			out[i].AgeNext = &age
		}
	}
	return out
}

// JSON writes v as indented JSON to w.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// IsJSON reports whether the output format flag asks for JSON.
func IsJSON(format string) bool {
	return format == config.OutputJSON
}

// formatDate renders a date with layout. Feb 29 of a common birth year has
// no time.Time equivalent and keeps its ISO form.
func formatDate(b calendar.BirthDate, layout string) string {
	if !b.YearKnown() {
		return b.String()
	}
	t := time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != b.Day {
		return b.String()
	}
	return t.Format(layout)
}
