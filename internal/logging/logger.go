// Package logging builds the structured loggers used by the collector and CLI.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Component is attached to every log line.
const Component = "iam-audit"

// Format selects the log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// New creates a logger writing to w at the given level. Unknown levels fall
// back to info.
func New(w io.Writer, level string, format Format) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("component", Component).
		Logger()
}
