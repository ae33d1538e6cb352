// Package logging builds the zerolog loggers used by the commands.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger in development and a JSON logger otherwise.
// level is a zerolog level name; empty or unknown means info.
func New(env, level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if env == "" || env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(lvl).
			With().
			Timestamp().
			Logger()
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
