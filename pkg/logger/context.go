package logger

import (
	"context"
	"log/slog"
)

// The request middleware scopes a logger per request (trace ID and
// friends); downstream code pulls it back out with From instead of
// threading a *slog.Logger through every call.

type loggerKey struct{}

// With derives a context carrying the current logger extended with fields.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey{}, From(ctx).With(fields...))
}

// From returns the context-scoped logger, falling back to the service-wide
// one when the context was never annotated.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
