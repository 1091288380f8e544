// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// LogLevel is a level name accepted by --log-level.
type LogLevel string

// Levels, from most to least verbose.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty selects zerolog's ConsoleWriter instead of JSON lines
	Pretty bool

	// Output defaults to os.Stderr; stdout is reserved for command output
	Output io.Writer
}

// DefaultConfig returns the CLI logger configuration: warnings and above on
// stderr, pretty when stderr is a terminal.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Pretty: IsTerminal(os.Stderr),
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger

	return logger
}

// ParseLevel validates a level name given on the command line.
func ParseLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(s))
	lvl, ok := zerologLevels[level]
	if !ok {
		return "", fmt.Errorf("unknown log level %q (debug, info, warn, error)", s)
	}
	if lvl == zerolog.WarnLevel {
		return LevelWarn, nil
	}
	return level, nil
}

// parseLevel maps a level to zerolog, falling back to warn.
func parseLevel(level LogLevel) zerolog.Level {
	if lvl, ok := zerologLevels[LogLevel(strings.ToLower(string(level)))]; ok {
		return lvl
	}
	return zerolog.WarnLevel
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache decisions (hit/miss, key, path)
//   - Invalidations and their reason
//   - Clock delta with the API
//
// Info: Normal operation events
//   - Cache cleared or warmed
//   - Configuration written
//
// Warn: Warning conditions that don't prevent operation
//   - Cache read/write failures (degraded to a live call)
//   - API error responses
//
// Error: Error conditions requiring attention
//   - Network failures and timeouts
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package (proxy, ovh-transport, cache, cli)
//   - method: HTTP method
//   - path: escaped API path
//   - status: HTTP status code
//   - error_class: client, server or network
//   - cache_hit: Boolean indicating cache hit
//   - key: cache key
//   - reason: invalidation reason (mutation, uncacheable)
