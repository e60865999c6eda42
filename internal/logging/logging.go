// Package logging configures the process-wide slog logger and derives
// request-scoped loggers from a context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorIDKey   contextKey = "actor_id"
)

type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// Init installs the default logger writing to stderr.
func Init(cfg Config) *slog.Logger {
	return InitWriter(os.Stderr, cfg)
}

func InitWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(s string) slog.Level {
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

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithActorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ActorID(ctx context.Context) int64 {
	id, _ := ctx.Value(actorIDKey).(int64)
	return id
}

// FromContext returns the default logger annotated with the request and
// actor ids carried by ctx.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RequestID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	if id := ActorID(ctx); id != 0 {
		logger = logger.With("actor_id", id)
	}
	return logger
}
