// Package logging builds the zerolog logger carried in the command context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 30
)

// AppName names the XDG state directory.
const AppName = "analysis-model"

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config defines the configuration for logger creation
type Config struct {
	// Writer overrides the destination, typically for tests.
	Writer io.Writer
	// File enables a rotating log file at the given path.
	File   string
	Format string
	Level  zerolog.Level
}

// New creates a new context with a logger attached. The returned closer
// releases the log file, if any.
func New(ctx context.Context, config Config) (context.Context, io.Closer, error) {
	var (
		writer io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	switch {
	case config.Writer != nil:
		writer = config.Writer
	case config.File != "":
		if err := os.MkdirAll(filepath.Dir(config.File), 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
			MaxAge:     maxLogAgeDays,
		}
		writer, closer = lj, lj
	}

	if config.Format == FormatConsole {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: config.File != ""}
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Logger().
		Level(config.Level)

	return logger.WithContext(ctx), closer, nil
}

// Get retrieves the logger from the provided context
// Returns the logger associated with the context, or a disabled logger if none exists
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// DefaultLogPath returns the log file under the XDG state directory.
func DefaultLogPath() (string, error) {
	path, err := xdg.StateFile(filepath.Join(AppName, AppName+".log"))
	if err != nil {
		return "", fmt.Errorf("failed to get log path: %w", err)
	}
	return path, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
