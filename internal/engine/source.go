package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
)

// RecordSource delivers raw birthday records.
// It is satisfied by *client.Client and by VCardSource.
type RecordSource interface {
	ListBirthdays(ctx context.Context) ([]calendar.Record, error)
}

// VCardSource reads birthday records from a local .vcf file.
type VCardSource struct {
	Path string
}

// ListBirthdays decodes every card of the file. Cards without a BDAY are
// ignored and undecodable cards are skipped with a warning; BDAY values are
// passed on unparsed so bad dates surface as validation failures.
func (s VCardSource) ListBirthdays(ctx context.Context) ([]calendar.Record, error) {
	if s.Path == "" {
		return nil, errors.New(config.ErrVCardPathEmpty)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardOpen, err)
	}
	// Best effort close. Errors in Close() for read-only files are rarely actionable here.
	defer func() { _ = f.Close() }()

	return decodeCards(ctx, io.LimitReader(f, config.MaxVCardFileSize))
}

func decodeCards(ctx context.Context, r io.Reader) ([]calendar.Record, error) {
	decoder := vcard.NewDecoder(r)
	var records []calendar.Record

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going so one broken card does not hide the others.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil {
			continue
		}

		name := cardName(card)
		records = append(records, calendar.Record{
			ID:        recordUID(name, bday.Value),
			Name:      name,
			BirthDate: bday.Value,
		})
	}
	return records, nil
}

// cardName applies the naming strategy: FN (Formatted) > N (Structured) > Fallback.
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
		return strings.TrimSpace(fn.Value)
	}
	if n := card.Name(); n != nil {
		if full := strings.TrimSpace(n.GivenName + " " + n.FamilyName); full != "" {
			return full
		}
	}
	return config.FallbackName
}

// recordUID derives a stable identifier so refreshes keep the same ids.
func recordUID(name, birthDate string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, birthDate, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
