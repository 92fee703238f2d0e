package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"bookshelf/internal/config"
)

// New builds a *slog.Logger from cfg, writes to stderr and installs it as the
// process default.
//
// Format "json" produces structured output for production; "text" produces
// human-readable output with source locations for development.
func New(cfg config.LogConfig) *slog.Logger {
	l := NewWithWriter(cfg, os.Stderr)
	slog.SetDefault(l)
	return l
}

// NewWithWriter is New without the global side effect.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps debug/info/warn/error (case-insensitive) to a slog.Level,
// defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
