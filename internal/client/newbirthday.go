package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
)

// Input errors reported before any request is sent.
var (
	ErrNameRequired = errors.New(config.ErrNameRequired)
	ErrNameTooLong  = errors.New(config.ErrNameTooLong)
	ErrYearRequired = errors.New(config.ErrYearRequired)
	ErrIDRequired   = errors.New(config.ErrIDRequired)
)

// NewBirthday is the input of Client.Add.
// BirthDate accepts every layout calendar.ParseBirthDate understands,
// but the year must be present.
type NewBirthday struct {
	Name      string
	BirthDate string
}

// Validate reports the first problem with nb, or nil.
func (nb NewBirthday) Validate() error {
	_, _, err := nb.normalize()
	return err
}

func (nb NewBirthday) normalize() (string, calendar.BirthDate, error) {
	name := strings.TrimSpace(nb.Name)
	if name == "" {
		return "", calendar.BirthDate{}, ErrNameRequired
	}
	if utf8.RuneCountInString(name) >= config.MaxNameLength {
		return "", calendar.BirthDate{}, fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}

	birth, err := calendar.ParseBirthDate(nb.BirthDate)
	if err != nil {
		return "", calendar.BirthDate{}, &calendar.ValidationError{
			Index: -1,
			Name:  name,
			Value: nb.BirthDate,
			Err:   err,
		}
	}
	if !birth.YearKnown() {
		return "", calendar.BirthDate{}, &calendar.ValidationError{
			Index: -1,
			Name:  name,
			Value: nb.BirthDate,
			Err:   ErrYearRequired,
		}
	}
	return name, birth, nil
}
