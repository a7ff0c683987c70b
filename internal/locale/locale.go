// Package locale translates the user-facing strings of the birthday list:
// countdown phrases, calendar event summaries, table headers and the date
// display layout.
package locale

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves messages for one language, falling back to English.
// It implements calendar.CountdownFormatter.
type Translator struct {
	Lang string

	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	languages []string
}

// New loads the embedded locale files and selects lang.
// Load problems are logged; missing messages fall back to their key.
func New(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{Lang: lang, bundle: bundle}
	t.languages = loadLocales(bundle)
	t.localizer = i18n.NewLocalizer(bundle, lang)
	return t
}

func loadLocales(bundle *i18n.Bundle) []string {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return nil
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}
	return detected
}

// Languages lists the languages found in the embedded locale files.
func (t *Translator) Languages() []string {
	return t.languages
}

// Msg translates a simple message, returning the key when it is missing.
func (t *Translator) Msg(key string) string {
	msg, err := t.localize(key, nil, nil)
	if err != nil {
		return key
	}
	return msg
}

// Count translates a plural message with a {{.Count}} placeholder.
func (t *Translator) Count(key string, n int) string {
	msg, err := t.localize(key, map[string]any{"Count": n}, n)
	if err != nil {
		return fmt.Sprintf("%s: %d", key, n)
	}
	return msg
}

// DateLayout returns the Go time layout used to display dates.
func (t *Translator) DateLayout() string {
	layout := t.Msg(config.TKeyFormatDate)
	if layout == config.TKeyFormatDate {
		return config.DateFormatDisplay
	}
	return layout
}

// FormatSpan phrases a countdown ("in 3 months and 14 days", "heute").
// It falls back to calendar.English when a message is missing.
func (t *Translator) FormatSpan(s calendar.Span) string {
	phrase, err := t.formatSpan(s)
	if err != nil {
		return calendar.English.FormatSpan(s)
	}
	return phrase
}

func (t *Translator) formatSpan(s calendar.Span) (string, error) {
	if s.IsZero() {
		return t.localize(config.TKeyCountdownToday, nil, nil)
	}

	var span string
	var err error
	switch {
	case s.Months == 0:
		span, err = t.localize(config.TKeySpanDays, map[string]any{"Count": s.Days}, s.Days)
	case s.Days == 0:
		span, err = t.localize(config.TKeySpanMonths, map[string]any{"Count": s.Months}, s.Months)
	default:
		months, errM := t.localize(config.TKeySpanMonths, map[string]any{"Count": s.Months}, s.Months)
		days, errD := t.localize(config.TKeySpanDays, map[string]any{"Count": s.Days}, s.Days)
		if err = errors.Join(errM, errD); err == nil {
			span, err = t.localize(config.TKeyCountdownAnd, map[string]any{"Months": months, "Days": days}, nil)
		}
	}
	if err != nil {
		return "", err
	}
	return t.localize(config.TKeyCountdownIn, map[string]any{"Span": span}, nil)
}

// Summary builds the calendar event title for a birthday.
func (t *Translator) Summary(name string, age int, yearKnown bool) string {
	var msg string
	var err error

	switch {
	case yearKnown && age == 0:
		msg, err = t.localize(config.TKeyEvtSummaryBirth, map[string]any{"Name": name}, nil)
	case yearKnown:
		msg, err = t.localize(config.TKeyEvtSummaryAge, map[string]any{"Name": name, "Age": age}, nil)
	default:
		msg, err = t.localize(config.TKeyEvtSummary, map[string]any{"Name": name}, nil)
	}

	if err != nil || msg == "" {
		return FallbackSummary(name, age, yearKnown)
	}
	return msg
}

// FallbackSummary is the untranslated event title.
func FallbackSummary(name string, age int, yearKnown bool) string {
	switch {
	case yearKnown && age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	case yearKnown:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	default:
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}

func (t *Translator) localize(key string, data map[string]any, pluralCount any) (string, error) {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  pluralCount,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}
