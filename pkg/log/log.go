// Package log wires the process-wide slog default used by every
// binary. Components receive loggers scoped with a module attribute so
// a single stream stays filterable.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger at the given level. Level names
// follow slog ("debug", "info", "warn", "error", case insensitive);
// anything unrecognized falls back to info.
func Setup(logLevel string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger scoped to one component.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
