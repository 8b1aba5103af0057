// Package logctx carries a request- or event-scoped logger on a context.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
)

type loggerKey struct{}

// With stores logger on ctx. A nil logger leaves ctx unchanged.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr returns the context logger, or fallback when none is stored.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return fallback
}

// Enrich stores a child of the context logger (or fallback) carrying fields.
func Enrich(ctx context.Context, fallback observability.Logger, fields ...observability.Field) context.Context {
	logger := FromOr(ctx, fallback)
	if logger == nil || len(fields) == 0 {
		return ctx
	}
	return With(ctx, logger.With(fields...))
}
