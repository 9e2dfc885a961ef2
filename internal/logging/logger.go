// Package logging configures the process-wide log/slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// New returns a logger for the given environment, writing to w.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging: JSON at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
//
// A non-empty level or format overrides what env would pick.
func New(w io.Writer, env, level, format string) *slog.Logger {
	lvl := slog.LevelDebug
	json := false
	switch env {
	case "prod":
		lvl, json = slog.LevelInfo, true
	case "staging":
		json = true
	}

	if level != "" {
		lvl = parseLevel(level)
	}
	switch strings.ToLower(format) {
	case "json":
		json = true
	case "text":
		json = false
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup builds a logger with New, writing to stdout, and installs it as
// the slog default.
func Setup(env, level, format string) *slog.Logger {
	l := New(os.Stdout, env, level, format)
	slog.SetDefault(l)
	return l
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// FromContext returns the default logger, tagged with the chi request ID
// when ctx carries one.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With(slog.String("request_id", reqID))
	}
	return logger
}
