package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
)

// Messages supplies the translated strings the renderers need.
// *locale.Translator satisfies it.
type Messages interface {
	Msg(key string) string
	Count(key string, n int) string
	DateLayout() string
}

// List writes entries as a table: name, birth date, next occurrence,
// countdown and the age reached.
func List(w io.Writer, entries []calendar.Entry, m Messages) {
	lw := NewListWriter(w,
		m.Msg(config.TKeyColName),
		m.Msg(config.TKeyColBirthDate),
		m.Msg(config.TKeyColNext),
		m.Msg(config.TKeyColCountdown),
		m.Msg(config.TKeyColAge),
	)

	layout := m.DateLayout()
	for _, e := range entries {
		age := config.AgeUnknown
		if e.Birth.YearKnown() {
			age = strconv.Itoa(e.AgeNext)
		}
		lw.Row(
			e.Name,
			formatDate(e.Birth, layout),
			e.NextOccurrence.Format(layout),
			e.Countdown,
			age,
		)
	}
	lw.FlushWithFooter(m.Count(config.TKeyFooterTotal, len(entries)))
}

// Failures lists the records that could not be annotated. Nothing is
// written when there are none.
func Failures(w io.Writer, failures []*calendar.ValidationError) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, config.MsgFailuresHead, len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, config.MsgFailureLine, f.Error())
	}
}

// Greeting congratulates everyone whose birthday is today.
func Greeting(w io.Writer, today []calendar.Entry, m Messages) {
	if len(today) == 0 {
		fmt.Fprintln(w, m.Msg(config.TKeyNoBirthdays))
		return
	}

	names := make([]string, len(today))
	for i, e := range today {
		names[i] = e.Name
		if e.Birth.YearKnown() {
			names[i] += " (" + strconv.Itoa(e.AgeNext) + ")"
		}
	}
	fmt.Fprintln(w, m.Msg(config.TKeyGreeting), strings.Join(names, ", "))
}
