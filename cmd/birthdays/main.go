package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tartampluch/birthdays/internal/config"
)

// main delegates to runMain so deferred calls (closing the log file) run
// before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain loads the environment, runs the command tree and maps errors to
// exit codes.
func runMain() int {
	settings, err := config.LoadSettings()
	if err != nil {
		return exitCode(&usageError{err: err})
	}

	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := newCLI(settings, os.Stdout, os.Stderr)
	defer c.close()

	err = c.execute(ctx, os.Args[1:])
	var uerr *usageError
	if err != nil && !errors.As(err, &uerr) {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
	}
	return exitCode(err)
}

// usageError marks errors caused by the command line itself.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return config.ExitCodeSuccess
	}
	fmt.Fprintln(os.Stderr, err)

	var uerr *usageError
	if errors.As(err, &uerr) {
		return config.ExitCodeUsage
	}
	return config.ExitCodeError
}

// isCobraUsageError returns true if the error looks like a Cobra argument
// validation or flag parsing error.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "arg(s)") ||
		strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.HasPrefix(msg, "invalid argument")
}
