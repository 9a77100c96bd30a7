package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every record so the API and the reaper can be
// told apart once their output is shipped to the same sink.
const ServiceName = "intro-auction"

// New returns the process logger. Pretty switches to zerolog's console writer
// for local runs; otherwise records are JSON lines on stdout.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return build(w, level).Caller().Logger()
}

// NewWithWriter is New without caller info, writing JSON to w.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(w, level).Logger()
}

// Component tags a child logger with the subsystem it belongs to
// (auction, reaper, ledger, notifier, bridge, http).
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func build(w io.Writer, level string) zerolog.Context {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", ServiceName)
}

// ParseLevel maps a config level onto zerolog, falling back to info.
// "warning" is accepted as an alias of "warn".
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(level); {
	case err != nil, level == "", lvl == zerolog.NoLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
