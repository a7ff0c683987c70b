package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout matches one accepted textual form. Submatch indexes point at
// the year, month and day groups; year 0 means the form carries no year.
type dateLayout struct {
	re               *regexp.Regexp
	year, month, day int
}

// Layouts are tried in order. time.Parse is not used because it rejects
// Feb 29 in non-leap years, which is a valid birth date here.
var dateLayouts = []dateLayout{
	// 2006-01-02
	{regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`), 1, 2, 3},
	// 20060102
	{regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`), 1, 2, 3},
	// RFC 3339 timestamps: only the date part matters
	{regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:\d{2})?$`), 1, 2, 3},
	// vCard truncated dates: --01-02 and --0102
	{regexp.MustCompile(`^--(\d{2})-?(\d{2})$`), 0, 1, 2},
	// 02.01.2006, the format people type in forms
	{regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`), 3, 2, 1},
}

// ParseBirthDate reads a birth date in any supported layout.
func ParseBirthDate(value string) (BirthDate, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return BirthDate{}, ErrMissingDate
	}

	for _, layout := range dateLayouts {
		m := layout.re.FindStringSubmatch(v)
		if m == nil {
			continue
		}

		b := BirthDate{
			Month: time.Month(atoi(m[layout.month])),
			Day:   atoi(m[layout.day]),
		}
		if layout.year > 0 {
			b.Year = atoi(m[layout.year])
			if b.Year == 0 {
				return BirthDate{}, fmt.Errorf("%w: year 0", ErrDateRange)
			}
		}
		if err := b.Validate(); err != nil {
			return BirthDate{}, err
		}
		return b, nil
	}

	return BirthDate{}, fmt.Errorf("%w: %q", ErrDateFormat, v)
}

// atoi is only called on regexp digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
