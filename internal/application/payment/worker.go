package payment

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
)

const (
	auditWorker  = "payment_audit_worker"
	useCaseAudit = "payment.audit"
)

// AuditWorker records payment lifecycle events emitted by the Processor.
type AuditWorker struct {
	subscriber domoutbox.Subscriber

	log        observability.Logger
	reqCounter observability.Counter // usecase_requests_total{use_case,outcome}
}

func NewAuditWorker(subscriber domoutbox.Subscriber, tel observability.Observability) *AuditWorker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &AuditWorker{
		subscriber: subscriber,
		log: observability.Category(tel.Logger(), LoggerName, LoggerCategory).With(
			observability.F("component", auditWorker),
		),
		reqCounter: tel.Metrics().Counter(observability.MUsecaseRequests),
	}
}

func (w *AuditWorker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(dompay.PendingEvent{}.EventName(), w.handle)
	w.subscriber.Subscribe(dompay.RedirectPreparedEvent{}.EventName(), w.handle)
}

func (w *AuditWorker) handle(ctx context.Context, e domoutbox.Event) error {
	logger := scopedLogger(ctx, w.log, observability.F("component", auditWorker)).With(
		observability.F("event", e.EventName()),
	)

	fields := []observability.Field{observability.F("order_no", e.AggregateID())}
	switch evt := e.(type) {
	case dompay.PendingEvent:
		fields = append(fields,
			observability.F("instrument_id", evt.InstrumentID),
			observability.F("transaction_id", evt.TransactionID),
			observability.F("processor_id", evt.ProcessorID),
			observability.F("occurred_at", evt.OccurredAt),
		)
	case dompay.RedirectPreparedEvent:
		fields = append(fields,
			observability.F("instrument_id", evt.InstrumentID),
			observability.F("transaction_id", evt.TransactionID),
			observability.F("redirect_url", evt.RedirectURL),
			observability.F("occurred_at", evt.OccurredAt),
		)
	default:
		w.reqCounter.Add(1,
			observability.L("use_case", useCaseAudit),
			observability.L("outcome", "ignored"),
		)
		return nil
	}

	logger.Info("payment_event_recorded", fields...)
	w.reqCounter.Add(1,
		observability.L("use_case", useCaseAudit),
		observability.L("outcome", "success"),
	)
	return nil
}
