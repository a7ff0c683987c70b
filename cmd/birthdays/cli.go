package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/client"
	"github.com/tartampluch/birthdays/internal/config"
	"github.com/tartampluch/birthdays/internal/engine"
	"github.com/tartampluch/birthdays/internal/locale"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	settings config.Settings
	debug    bool
	today    string

	stdout io.Writer
	stderr io.Writer

	// logDir overrides the user cache directory for the log file.
	logDir  string
	logFile io.Closer

	tr *locale.Translator
}

func newCLI(settings config.Settings, stdout, stderr io.Writer) *cli {
	return &cli{
		settings: settings,
		stdout:   stdout,
		stderr:   stderr,
	}
}

func (c *cli) close() {
	if c.logFile != nil {
		_ = c.logFile.Close() // Best effort close
		c.logFile = nil
	}
}

// execute runs the command tree with args and marks command-line mistakes
// as usage errors.
func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && isCobraUsageError(err) {
		var uerr *usageError
		if !errors.As(err, &uerr) {
			return &usageError{err: err}
		}
	}
	return err
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               config.CommandName,
		Short:             "Upcoming birthdays, nearest first",
		Long:              `birthdays lists the birthdays kept by a birthdays API or a vCard file, ordered by how soon they come, and can serve them as an iCalendar feed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.StringVar(&c.settings.APIURL, config.FlagAPIURL, c.settings.APIURL, config.FlagDescAPIURL)
	pf.StringVar(&c.settings.Source, config.FlagSource, c.settings.Source, config.FlagDescSource)
	pf.StringVar(&c.settings.VCardPath, config.FlagVCard, c.settings.VCardPath, config.FlagDescVCard)
	pf.StringVar(&c.settings.Language, config.FlagLang, c.settings.Language, config.FlagDescLang)
	pf.StringVar(&c.settings.LeapDay, config.FlagLeapDay, c.settings.LeapDay, config.FlagDescLeapDay)
	pf.StringVar(&c.today, config.FlagToday, "", config.FlagDescToday)

	root.AddCommand(
		c.listCommand(),
		c.todayCommand(),
		c.addCommand(),
		c.deleteCommand(),
		c.serveCommand(),
		c.versionCommand(),
	)
	return root
}

// setup runs before every command: logging first, then validation.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == config.CmdVersion {
		return nil
	}

	c.setupLogging(cmd.Name() == config.CmdServe)
	logStartupInfo(cmd.Name(), c.settings.Source)

	if err := c.settings.Validate(); err != nil {
		return &usageError{err: err}
	}
	c.tr = locale.New(c.settings.Language)
	return nil
}

func (c *cli) calculator() calendar.Calculator {
	// Validate already rejected unknown policies.
	policy, _ := calendar.ParseLeapDayPolicy(c.settings.LeapDay)
	return calendar.Calculator{LeapDay: policy, Countdown: c.tr}
}

// clock returns a fixed clock for --today, otherwise the system clock in
// the configured zone.
func (c *cli) clock() (engine.Clock, error) {
	loc, err := c.settings.Location()
	if err != nil {
		return nil, err
	}
	if c.today == "" {
		return engine.RealClock{Loc: loc}, nil
	}

	t, err := time.ParseInLocation(config.DateFormatISO, c.today, loc)
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("%s: %w", config.ErrTodayFormat, err)}
	}
	return engine.FixedClock{T: t}, nil
}

func (c *cli) apiClient() (*client.Client, error) {
	if c.settings.Source != config.SourceModeAPI {
		return nil, &usageError{err: errors.New(config.ErrNeedsAPI)}
	}
	return client.New(c.settings.APIURL)
}

func (c *cli) source() (engine.RecordSource, error) {
	if c.settings.Source == config.SourceModeVCard {
		return engine.VCardSource{Path: c.settings.VCardPath}, nil
	}
	api, err := client.New(c.settings.APIURL)
	if err != nil {
		return nil, err
	}
	return api, nil
}

func (c *cli) generator() (*engine.Generator, error) {
	src, err := c.source()
	if err != nil {
		return nil, err
	}
	clk, err := c.clock()
	if err != nil {
		return nil, err
	}
	return &engine.Generator{
		Clock:         clk,
		Source:        src,
		Calculator:    c.calculator(),
		FormatSummary: c.tr.Summary,
	}, nil
}

// snapshot runs one sync without a reminder.
func (c *cli) snapshot(ctx context.Context) (*engine.Snapshot, error) {
	gen, err := c.generator()
	if err != nil {
		return nil, err
	}
	return gen.RunSync(ctx, engine.SyncConfig{})
}
