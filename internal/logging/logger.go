package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// basic global logger, JSON to stdout.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	return logger
}

// Configure replaces the global logger with a JSON logger writing to w at
// the given level.
func Configure(w io.Writer, level slog.Level) {
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// With returns a logger with additional fields.
func With(kv ...any) *slog.Logger {
	return logger.With(kv...)
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request id for FromContext.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// FromContext adds the request id stored by WithRequestID, if present.
func FromContext(ctx context.Context) *slog.Logger {
	reqID, _ := ctx.Value(requestIDKey{}).(string)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// ParseLevel maps a level name onto slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
