package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the process-wide slog.Logger. JSON output is meant for
// the hosted deployment; the default text handler reads better in dev.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
