// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/config"
)

// New creates a zerolog.Logger for the given configuration.
// Format "console" writes human readable output, anything else writes JSON.
func New(cfg config.LoggingConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out, err := output(cfg.Output)
	if err != nil {
		return zerolog.Nop(), err
	}

	return NewWithWriter(out, cfg.Format, cfg.TimeFormat).Level(level), nil
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, format, timeFormat string) zerolog.Logger {
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
	}

	return zerolog.New(w).With().Timestamp().Str("app", "sentinel").Logger()
}

func output(name string) (io.Writer, error) {
	switch name {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, nil
	}
}
