// Package appcontext carries the logger through context.Context. Components scope it to
// what they are working on (an identity, an import file) so every line they log says so.
package appcontext

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithAttrs returns ctx carrying its logger extended with the key/value pairs in args.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	return WithLogger(ctx, LoggerFromContext(ctx).With(args...))
}

// LoggerFromContext returns the logger carried by ctx, or slog.Default().
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
