package logger

import (
	"io"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"ai_server_builder/config"
)

func NewSlogLogger(cfg *config.Config) *slog.Logger {
	return New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

// New builds a logger writing to w. Unknown levels fall back to info.
func New(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

var Module = fx.Module("logger",
	fx.Provide(NewSlogLogger),
)
