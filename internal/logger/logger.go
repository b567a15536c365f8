// Package logger provides clipvault's configured zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = zerolog.WarnLevel

// ParseLevel maps a config log_level to a zerolog level. An empty string is
// DefaultLevel.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return DefaultLevel, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return lvl, nil
}

// New returns a text logger without colors writing to w, or stderr when w
// is nil.
func New(level zerolog.Level, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}).Level(level).With().Timestamp().Logger()
}

// Init builds a logger for level, installs it as the global log.Logger and
// returns it.
func Init(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	l := New(lvl, w)
	log.Logger = l
	return l, err
}
