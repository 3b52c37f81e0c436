package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithAccount tags every later log line of the request with the
// authenticated account.
func WithAccount(ctx context.Context, accountID, role string) context.Context {
	l := FromContext(ctx).With(slog.String("account_id", accountID))
	if role != "" {
		l = l.With(slog.String("role", role))
	}
	return WithContext(ctx, l)
}
