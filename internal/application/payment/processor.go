package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	domorder "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	LoggerName     = "int_acuotaz"
	LoggerCategory = "acuotaz"

	processorService = "acuotaz-processor"
	useCaseHandle    = "payment.acuotaz.handle"
	useCaseAuthorize = "payment.acuotaz.authorize"
	spanPrefix       = "UC."
	publishPeer      = "outbox"
	publishTimeout   = 300 * time.Millisecond
	opHandle         = "handle"
	opAuthorize      = "authorize"

	msgMethodMissing    = "payment method " + dompay.MethodID + " not configured"
	msgProcessorMissing = "payment processor for " + dompay.MethodID + " not configured"
)

// Processor is the Acuotaz hosted-redirect payment processor. Handle marks an
// instrument as pending; Authorize prepares the gateway redirect. Neither
// returns an error: every failure is folded into the result outcome.
type Processor struct {
	verifier  *Verifier
	state     *StateManager
	redirect  *RedirectBuilder
	catalog   dompay.Catalog
	publisher domoutbox.Publisher
	tel       observability.Observability

	log            observability.Logger
	reqCounter     observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram   observability.Histogram // usecase_duration_seconds{use_case}
	outcomeCounter observability.Counter   // payment_outcomes_total{operation,status}
	extCounter     observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram   observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewProcessor wires the processor. publisher may be nil; a nil redirect
// builder targets DefaultRedirectBaseURL.
func NewProcessor(
	catalog dompay.Catalog,
	store dompay.InstrumentStore,
	redirect *RedirectBuilder,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Processor {
	if tel == nil {
		tel = observability.Nop()
	}
	if redirect == nil {
		redirect = &RedirectBuilder{base: DefaultRedirectBaseURL}
	}
	baseLog := observability.Category(tel.Logger(), LoggerName, LoggerCategory).With(
		observability.F("service", processorService),
	)
	metrics := tel.Metrics()

	return &Processor{
		verifier:       NewVerifier(baseLog),
		state:          NewStateManager(store, baseLog),
		redirect:       redirect,
		catalog:        catalog,
		publisher:      publisher,
		tel:            tel,
		log:            baseLog,
		reqCounter:     metrics.Counter(observability.MUsecaseRequests),
		durHistogram:   metrics.Histogram(observability.MUsecaseDuration),
		outcomeCounter: metrics.Counter(observability.MPaymentOutcomes),
		extCounter:     metrics.Counter(observability.MExternalRequests),
		extHistogram:   metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// SetClock replaces the time source used for transaction ids (primarily for tests).
func (p *Processor) SetClock(now func() time.Time) {
	if now != nil {
		p.state.now = now
	}
}

// Handle verifies the payment data, resolves the ACUOTAZ_PM processor and
// stamps the instrument with a pending transaction id.
func (p *Processor) Handle(ctx context.Context, o *domorder.Order, inst *dompay.Instrument) (res dompay.HandleResult) {
	var orderNo string
	if o != nil {
		orderNo = o.No
	}
	base := scopedLogger(ctx, p.log, observability.F("service", processorService))
	logger := base.With(
		observability.F("use_case", useCaseHandle),
		observability.F("order_no", orderNo),
	)
	ctx, span := p.tel.Tracer().Start(ctx, spanPrefix+"AcuotazHandle",
		attribute.String("use_case", useCaseHandle),
		attribute.String("order.no", orderNo),
	)
	ctx = withScopedLogger(ctx, base)
	start := time.Now()
	logger.Info("acuotaz_handle_start")

	defer func() {
		if r := recover(); r != nil {
			perr := recovered(r)
			logger.Error("acuotaz_handle_exception",
				observability.F("error", perr.Error()),
				observability.F("stack", string(perr.Stack)),
			)
			res = dompay.HandleResult{Outcome: dompay.UnexpectedError{Code: dompay.CodeHandleException, Err: perr}}
		}
		p.finish(ctx, span, logger, useCaseHandle, opHandle, start, res.Outcome)
	}()

	if err := p.verifier.Verify(ctx, o, inst); err != nil {
		code, msg := dompay.CodeVerificationException, err.Error()
		var verr *VerificationError
		if errors.As(err, &verr) {
			code, msg = verr.Code, verr.Message
		}
		logger.Error("acuotaz_handle_verification_failed",
			observability.F("code", string(code)),
			observability.F("error", msg),
		)
		return dompay.HandleResult{Outcome: dompay.ValidationError{Code: code, Message: msg}}
	}

	logger.Info("acuotaz_handle_details",
		observability.F("amount", inst.Transaction.Amount.String()),
		observability.F("currency", o.CurrencyCode),
	)

	method, err := p.catalog.PaymentMethod(ctx, dompay.MethodID)
	if err != nil {
		return p.handleFault(logger, fmt.Errorf("%w: %w", ErrCatalog, err))
	}
	if method == nil {
		logger.Error("acuotaz_payment_method_not_configured", observability.F("method_id", dompay.MethodID))
		return dompay.HandleResult{Outcome: dompay.ConfigurationError{
			Code:    dompay.CodePaymentMethodNotConfigured,
			Message: msgMethodMissing,
		}}
	}

	processor := method.Processor()
	if processor == nil {
		logger.Error("acuotaz_payment_processor_not_configured", observability.F("method_id", dompay.MethodID))
		return dompay.HandleResult{Outcome: dompay.ConfigurationError{
			Code:    dompay.CodePaymentProcessorNotConfigured,
			Message: msgProcessorMissing,
		}}
	}
	logger.Info("acuotaz_payment_method_validated", observability.F("processor_id", processor.ID))

	txID, err := p.state.MarkPending(ctx, o.No, inst, processor)
	if err != nil {
		return p.handleFault(logger, err)
	}
	span.SetAttributes(attribute.String("payment.transaction_id", txID))

	p.publish(ctx, logger, dompay.NewPendingEvent(o.No, inst))

	logger.Info("acuotaz_handle_completed", observability.F("transaction_id", txID))
	return dompay.HandleResult{Outcome: dompay.Success{TransactionID: txID}}
}

// Authorize builds the gateway redirect URL and re-binds the processor. No
// call to the gateway is made; settlement happens when the shopper returns.
func (p *Processor) Authorize(ctx context.Context, orderNo string, inst *dompay.Instrument, processor *dompay.Processor) (res dompay.AuthorizeResult) {
	base := scopedLogger(ctx, p.log, observability.F("service", processorService))
	logger := base.With(
		observability.F("use_case", useCaseAuthorize),
		observability.F("order_no", orderNo),
	)
	ctx, span := p.tel.Tracer().Start(ctx, spanPrefix+"AcuotazAuthorize",
		attribute.String("use_case", useCaseAuthorize),
		attribute.String("order.no", orderNo),
	)
	ctx = withScopedLogger(ctx, base)
	start := time.Now()
	logger.Info("acuotaz_authorize_start")

	defer func() {
		if r := recover(); r != nil {
			perr := recovered(r)
			logger.Error("acuotaz_authorize_exception",
				observability.F("error", perr.Error()),
				observability.F("stack", string(perr.Stack)),
			)
			res = dompay.AuthorizeResult{Outcome: dompay.UnexpectedError{Code: dompay.CodeAuthorizeException, Err: perr}}
		}
		p.finish(ctx, span, logger, useCaseAuthorize, opAuthorize, start, res.Outcome)
	}()

	if inst == nil {
		return p.authorizeFault(logger, ErrMissingInstrument)
	}

	amount := inst.Transaction.Amount
	txID := inst.Transaction.TransactionID
	logger.Info("acuotaz_authorize_details",
		observability.F("amount", amount.String()),
		observability.F("transaction_id", txID),
	)

	redirectURL := p.redirect.Build(orderNo, amount)
	logger.Info("acuotaz_redirect_url_generated", observability.F("redirect_url", redirectURL))

	if err := p.state.BindProcessor(ctx, inst, processor); err != nil {
		return p.authorizeFault(logger, err)
	}
	logger.Info("acuotaz_payment_marked_authorized")

	p.publish(ctx, logger, dompay.NewRedirectPreparedEvent(orderNo, inst, redirectURL))

	logger.Info("acuotaz_authorize_completed", observability.F("redirect_url", redirectURL))
	return dompay.AuthorizeResult{Outcome: dompay.Success{TransactionID: txID, RedirectURL: redirectURL}}
}

func (p *Processor) handleFault(logger observability.Logger, err error) dompay.HandleResult {
	logger.Error("acuotaz_handle_exception",
		observability.F("error", err.Error()),
		observability.F("stack", stackOf(err)),
	)
	return dompay.HandleResult{Outcome: dompay.UnexpectedError{Code: dompay.CodeHandleException, Err: err}}
}

func (p *Processor) authorizeFault(logger observability.Logger, err error) dompay.AuthorizeResult {
	logger.Error("acuotaz_authorize_exception",
		observability.F("error", err.Error()),
		observability.F("stack", stackOf(err)),
	)
	return dompay.AuthorizeResult{Outcome: dompay.UnexpectedError{Code: dompay.CodeAuthorizeException, Err: err}}
}

// publish emits a lifecycle event. Failures are logged and counted only.
func (p *Processor) publish(ctx context.Context, logger observability.Logger, e domoutbox.Event) {
	if p.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	pubStart := time.Now()
	pubOutcome := "success"
	if err := p.publisher.Publish(pubCtx, e); err != nil {
		pubOutcome = "error"
		logger.Warn("acuotaz_event_publish_failed",
			observability.F("event", e.EventName()),
			observability.Err(err),
		)
	}

	p.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", pubOutcome),
	)
	p.extHistogram.Observe(time.Since(pubStart).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)
}

func (p *Processor) finish(
	ctx context.Context,
	span trace.Span,
	logger observability.Logger,
	useCase, operation string,
	start time.Time,
	outcome dompay.Outcome,
) {
	lat := time.Since(start).Seconds()
	result, statusText := "success", "OK"
	if outcome != nil {
		statusText = outcome.Status()
	}
	if _, ok := outcome.(dompay.Success); !ok {
		result = "error"
	}

	if span != nil {
		span.SetAttributes(attribute.String("payment.outcome", statusText))
		if result == "error" {
			if u, ok := outcome.(dompay.UnexpectedError); ok && u.Err != nil {
				span.RecordError(u.Err)
			}
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()
	}

	p.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", result),
	)
	p.durHistogram.Observe(lat, observability.L("use_case", useCase))
	p.outcomeCounter.Add(1,
		observability.L("operation", operation),
		observability.L("status", statusText),
	)

	fields := []observability.Field{
		observability.F("outcome", result),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if result == "error" {
		fields = append(fields, observability.F("failure_reason", dompay.Describe(outcome)))
	}
	logger.Info("use_case_done", fields...)
}
