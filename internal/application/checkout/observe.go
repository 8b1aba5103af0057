package checkout

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	checkoutService = "checkout-service"
	spanPrefix      = "UC."
)

// telemetry holds the RED metrics shared by the checkout use cases.
type telemetry struct {
	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func newTelemetry(tel observability.Observability) telemetry {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return telemetry{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", checkoutService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// done ends span, records metrics and writes the use_case_done line.
func (in telemetry) done(
	ctx context.Context,
	span trace.Span,
	logger observability.Logger,
	useCase string,
	start time.Time,
	statusText string,
	err error,
) {
	lat := time.Since(start).Seconds()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()
	}

	in.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	in.durHistogram.Observe(lat, observability.L("use_case", useCase))

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logger.Info("use_case_done", fields...)
}
