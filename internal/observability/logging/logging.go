// Package logging builds the process-wide JSON slog logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	ServiceName string
	Environment string
	Level       string // debug, info, warn, error (case-insensitive)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a JSON logger carrying the service and environment
// attributes on every record. Unknown or empty levels fall back to info.
func NewLogger(cfg Config) *slog.Logger {
	env := cfg.Environment
	if env == "" {
		env = "dev"
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	return slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", env),
	)
}
