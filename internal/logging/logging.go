package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger: JSON on stdout, or a console writer when
// appEnv is "development". debug forces the debug level.
func New(appEnv, level string, debug bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, appEnv, level, debug)
}

func NewWithWriter(w io.Writer, appEnv, level string, debug bool) zerolog.Logger {
	lvl := ParseLevel(level)
	if debug || appEnv == "development" {
		lvl = zerolog.DebugLevel
	}

	out := w
	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
