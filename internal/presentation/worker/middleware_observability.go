package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext injects a request-scoped logger for background executions.
// Dynamic fields only: event_id (generated if empty), trace_id/span_id when
// valid, plus caller-provided low-cardinality attributes.
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = logctx.FromOr(ctx, observability.NopLogger())
	}

	fields := make([]observability.Field, 0, 3+len(attrs))

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// EventContext returns a bus context decorator that gives every delivered
// event its own event_id and the dispatching span's trace ids.
func EventContext(base observability.Logger) func(context.Context, domoutbox.Event) context.Context {
	return func(ctx context.Context, e domoutbox.Event) context.Context {
		sc := trace.SpanContextFromContext(ctx)
		logger := logctx.FromOr(ctx, base)
		return WithEventContext(ctx, logger, sc.TraceID(), sc.SpanID(), map[string]string{
			"event": e.EventName(),
		})
	}
}
