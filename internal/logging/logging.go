// Package logging builds the zap loggers used by the CLI and the registry
// server.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoder.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format selects console or JSON output. Defaults to console.
	Format Format

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer
}

// ParseLevel converts a level name to a zapcore.Level, falling back to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// New creates a logger for the given options.
func New(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	switch opts.Format {
	case FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	default:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), ParseLevel(opts.Level))
	return zap.New(core)
}

// NewCLI returns the console logger used by zoo commands. Verbose forces
// debug; otherwise level applies, defaulting to warn.
func NewCLI(out io.Writer, level string, verbose bool) *zap.Logger {
	switch {
	case verbose:
		level = "debug"
	case strings.TrimSpace(level) == "":
		level = "warn"
	}
	return New(Options{Level: level, Format: FormatConsole, Output: out})
}

// NewServer returns a JSON logger for the registry server.
func NewServer(level string) *zap.Logger {
	return New(Options{Level: level, Format: FormatJSON}).Named("registry")
}
