// Package telemetry wires structured logging and Prometheus metrics.
package telemetry

import (
	"log/slog"
	"os"
	"strings"

	"github.com/app-catalog/app-catalog/internal/config"
)

// SetupLogger configures the default slog logger from the logging config and
// returns it. Unknown levels fall back to info.
func SetupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
