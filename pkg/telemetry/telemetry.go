// Package telemetry sets up the process-wide structured logger.
package telemetry

import (
	"log/slog"
	"os"
)

// Config controls the logger telemetry.Setup builds.
type Config struct {
	ServiceName string
	Replica     uint8
	LogLevel    string
	LogFormat   string // json, text
}

// Setup builds a slog.Logger per cfg and installs it as the process
// default.
func Setup(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.LogLevel),
		AddSource: cfg.LogLevel == "debug",
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.ServiceName,
		"replica", cfg.Replica,
	)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
