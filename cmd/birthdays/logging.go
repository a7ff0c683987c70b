package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tartampluch/birthdays/internal/config"
)

// setupLogging configures the default slog logger. Logs always go to a
// file in the cache directory. The long-running serve command owns its own
// file and also logs to stdout; the other commands append to a shared file
// and only echo logs to stderr with --debug, keeping stdout for their output.
func (c *cli) setupLogging(serve bool) {
	var writers []io.Writer

	switch {
	case serve:
		writers = append(writers, c.stdout)
	case c.debug:
		writers = append(writers, c.stderr)
	}

	name, flags := config.LogFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY
	if serve {
		// O_TRUNC resets the server log on restart to prevent indefinite growth.
		name, flags = config.ServeLogFileName, os.O_TRUNC|os.O_CREATE|os.O_WRONLY
	}

	if logPath, err := c.logFilePath(name); err == nil {
		f, err := os.OpenFile(logPath, flags, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			c.logFile = f
		} else {
			fmt.Fprintf(c.stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if c.debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: c.debug,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))
}

// logFilePath determines the platform-specific cache directory for logs.
func (c *cli) logFilePath(name string) (string, error) {
	appDir := c.logDir
	if appDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
		}
		appDir = filepath.Join(cacheDir, config.AppID)
	}

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, name), nil
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(command, mode string) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyCommand, command,
		config.LogKeyMode, mode,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuildDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}
