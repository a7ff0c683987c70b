package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/birthdays/internal/app"
	"github.com/tartampluch/birthdays/internal/client"
	"github.com/tartampluch/birthdays/internal/config"
	"github.com/tartampluch/birthdays/internal/engine"
	"github.com/tartampluch/birthdays/internal/render"
	"github.com/tartampluch/birthdays/internal/server"
)

func (c *cli) listCommand() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   config.CmdList,
		Short: "List birthdays, nearest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return &usageError{err: errors.New(config.ErrLimitNegative)}
			}

			snap, err := c.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			entries := snap.Upcoming(limit)
			if render.IsJSON(output) {
				if err := render.JSON(c.stdout, render.Entries(entries)); err != nil {
					return err
				}
			} else {
				render.List(c.stdout, entries, c.tr)
			}
			render.Failures(c.stderr, snap.Result.Failures)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, config.FlagLimit, c.settings.Limit, config.FlagDescLimit)
	cmd.Flags().StringVarP(&output, config.FlagOutput, config.FlagOutputShort, "", config.FlagDescOutput)
	return cmd
}

func (c *cli) todayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdToday,
		Short: "Greet everyone whose birthday is today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := c.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			render.Greeting(c.stdout, snap.Today(), c.tr)
			render.Failures(c.stderr, snap.Result.Failures)
			return nil
		},
	}
}

func (c *cli) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdAdd + " NAME DATE",
		Short: "Add a birthday (source=api)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.apiClient()
			if err != nil {
				return err
			}
			nb := client.NewBirthday{Name: args[0], BirthDate: args[1]}
			if err := nb.Validate(); err != nil {
				return &usageError{err: err}
			}
			rec, err := api.Add(cmd.Context(), nb)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, config.MsgAdded, rec.Name, rec.ID)
			return nil
		},
	}
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdDelete + " ID",
		Short: "Delete a birthday by id (source=api)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.apiClient()
			if err != nil {
				return err
			}
			if err := api.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, client.ErrIDRequired) {
					return &usageError{err: err}
				}
				return err
			}
			fmt.Fprintf(c.stdout, config.MsgDeleted, args[0])
			return nil
		},
	}
}

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: "Serve the birthdays as an iCalendar feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := c.generator()
			if err != nil {
				return err
			}

			srv := server.NewCalendarServer(c.settings.Port)
			svc := app.New(gen, srv, c.settings.RefreshInterval, engine.SyncConfig{ReminderTrigger: c.settings.Reminder})

			ctx := cmd.Context()
			hup := make(chan os.Signal, config.ChannelBufferSize)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						slog.Info(config.MsgRefreshSignal, config.LogKeyComponent, config.CompMain)
						svc.Refresh()
					}
				}
			}()

			if err := svc.Serve(ctx); err != nil {
				return err
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}

	// Bound to settings so the root setup validates the overrides.
	cmd.Flags().StringVar(&c.settings.Port, config.FlagPort, c.settings.Port, config.FlagDescPort)
	cmd.Flags().StringVar(&c.settings.Reminder, config.FlagReminder, c.settings.Reminder, config.FlagDescReminder)
	return cmd
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			c.printVersion()
		},
	}
}

// printVersion outputs the build information.
func (c *cli) printVersion() {
	fmt.Fprintf(c.stdout, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}
