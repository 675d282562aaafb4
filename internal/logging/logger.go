// Package logging defines the structured-logging interface used across
// profilekeeper together with slog and zap implementations.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "user logged in", "user_id", id, "ip", ip)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendZap  = "zap"
	BackendSlog = "slog"
)

// New builds the logger selected by backend. The returned func flushes
// buffered entries and should be deferred by the caller.
func New(backend string, development bool) (Logger, func() error, error) {
	switch backend {
	case BackendZap, "":
		l, err := NewZapLogger(development)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Sync, nil
	case BackendSlog:
		level := slog.LevelInfo
		if development {
			level = slog.LevelDebug
		}
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		return NewSlogLogger(slog.New(h)), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
