// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the process-wide logger. Zero fields take the values of
// DefaultConfig, except Caller and Timestamp which are plain switches.
type Config struct {
	Level     string    // trace, debug, info, warn, error, fatal, panic, disabled
	Format    string    // json or console
	Caller    bool      // add file:line
	Timestamp bool      // add the time field
	Output    io.Writer // defaults to stderr
}

// DefaultConfig is JSON at info level on stderr with timestamps.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // package-level helpers log before main calls Init
func init() {
	Init(DefaultConfig())
}

// Init builds a logger from cfg and installs it. Safe to call again to
// reconfigure; loggers already derived with With keep their old output.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	logger := build(cfg)
	current.Store(&logger)
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// parseLevel maps a configured level name to a zerolog level. Unknown or
// empty names fall back to info.
func parseLevel(level string) zerolog.Level {
	switch name := strings.ToLower(strings.TrimSpace(level)); name {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		parsed, err := zerolog.ParseLevel(name)
		if err != nil || parsed == zerolog.NoLevel {
			return zerolog.InfoLevel
		}
		return parsed
	}
}

func logger() *zerolog.Logger {
	return current.Load()
}

// Logger returns a copy of the installed logger.
func Logger() zerolog.Logger {
	return *logger()
}

// SetLogger installs l as the process-wide logger. Tests use it to capture
// output.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// With starts a child logger context:
//
//	importLog := logging.With().Str("run_id", id).Logger()
func With() zerolog.Context {
	return logger().With()
}

// Trace starts a trace-level event.
func Trace() *zerolog.Event { return logger().Trace() }

// Debug starts a debug-level event.
func Debug() *zerolog.Event { return logger().Debug() }

// Info starts an info-level event.
func Info() *zerolog.Event { return logger().Info() }

// Warn starts a warn-level event.
func Warn() *zerolog.Event { return logger().Warn() }

// Error starts an error-level event.
func Error() *zerolog.Event { return logger().Error() }

// Fatal starts a fatal event; the process exits after Msg.
func Fatal() *zerolog.Event { return logger().Fatal() }

// Err starts an error-level event carrying err, or an info-level event
// when err is nil.
func Err(err error) *zerolog.Event { return logger().Err(err) }

// GetLevel returns the global minimum level.
func GetLevel() zerolog.Level {
	return zerolog.GlobalLevel()
}

// NewTestLogger returns a timestamped JSON logger writing to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
