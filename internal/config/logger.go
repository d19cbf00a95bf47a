package config

import (
	"log/slog"
	"os"
)

// SetupLogger installs the default slog logger: text in dev, JSON in prod
func SetupLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProd() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	logger := slog.New(handler).With("app", "libraryhub")
	slog.SetDefault(logger)
	return logger
}
