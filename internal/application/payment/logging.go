package payment

import (
	"context"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability/logctx"
)

// categorized marks a context logger that already carries the payment category.
type categorized struct{ observability.Logger }

// scopedLogger returns the logger a payment component writes to. A request or
// event logger found in ctx is bound to the int_acuotaz/acuotaz category plus
// fields; without one, own is returned as is since it already carries them.
func scopedLogger(ctx context.Context, own observability.Logger, fields ...observability.Field) observability.Logger {
	l := logctx.From(ctx)
	if l == nil {
		return own
	}
	if _, ok := l.(categorized); !ok {
		l = observability.Category(l, LoggerName, LoggerCategory)
	}
	return l.With(fields...)
}

// withScopedLogger stores l, already categorized, for the components the
// processor calls.
func withScopedLogger(ctx context.Context, l observability.Logger) context.Context {
	return logctx.With(ctx, categorized{l})
}
