package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var reminderRe = regexp.MustCompile(ReminderPattern)

// Settings holds the runtime configuration read from the environment.
// Command-line flags override individual fields after loading.
type Settings struct {
	APIURL          string        `env:"BIRTHDAYS_API_URL" envDefault:"http://127.0.0.1:9000/"`
	Source          string        `env:"BIRTHDAYS_SOURCE" envDefault:"api"`
	VCardPath       string        `env:"BIRTHDAYS_VCARD_PATH"`
	Port            string        `env:"BIRTHDAYS_PORT" envDefault:"18080"`
	Language        string        `env:"BIRTHDAYS_LANG" envDefault:"en"`
	LeapDay         string        `env:"BIRTHDAYS_LEAP_DAY" envDefault:"feb28"`
	RefreshInterval time.Duration `env:"BIRTHDAYS_REFRESH" envDefault:"1h"`
	Reminder        string        `env:"BIRTHDAYS_REMINDER"`
	Timezone        string        `env:"BIRTHDAYS_TZ"`
	Limit           int           `env:"BIRTHDAYS_LIMIT" envDefault:"0"`
}

// LoadSettings parses Settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrEnvParse, err)
	}
	return s, nil
}

// Validate checks every field and joins all problems into one error.
func (s Settings) Validate() error {
	var errs []error

	switch s.Source {
	case SourceModeAPI:
		if strings.TrimSpace(s.APIURL) == "" {
			errs = append(errs, errors.New(ErrInvalidURL))
		}
	case SourceModeVCard:
		if strings.TrimSpace(s.VCardPath) == "" {
			errs = append(errs, errors.New(ErrVCardPathEmpty))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source))
	}

	if s.LeapDay != LeapDayFeb28 && s.LeapDay != LeapDayMar1 {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLeapDayUnsupport, s.LeapDay))
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLangUnsupport, s.Language))
	}
	if s.RefreshInterval <= 0 {
		errs = append(errs, errors.New(ErrRefreshInterval))
	}
	if s.Reminder != "" && !reminderRe.MatchString(s.Reminder) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrReminderFormat, s.Reminder))
	}
	if s.Limit < 0 {
		errs = append(errs, errors.New(ErrLimitNegative))
	}
	if _, err := s.Location(); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePort(s.Port); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location resolves the configured time zone; empty means the system zone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrTimezone, err)
	}
	return loc, nil
}

// ValidatePort checks that port is a number in the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
