package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/application"
	domorder "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseSubmitPayment = "checkout.submit_payment"

var _ application.UseCase[SubmitPaymentInput, *SubmitPaymentResult] = (*SubmitPaymentUseCase)(nil)

// SubmitPaymentUseCase plays the checkout workflow step that hands the order
// to the payment processor: Handle, then Authorize with the bound processor.
type SubmitPaymentUseCase struct {
	orders      domorder.Repository
	instruments InstrumentRepository
	processor   PaymentProcessor
	obs         telemetry
}

type SubmitPaymentInput struct {
	OrderNo      string
	InstrumentID string
}

type SubmitPaymentResult struct {
	OrderNo       string
	TransactionID string
	RedirectURL   string
}

func NewSubmitPaymentUseCase(
	orders domorder.Repository,
	store InstrumentRepository,
	processor PaymentProcessor,
	tel observability.Observability,
) *SubmitPaymentUseCase {
	return &SubmitPaymentUseCase{
		orders:      orders,
		instruments: store,
		processor:   processor,
		obs:         newTelemetry(tel),
	}
}

// Execute returns the gateway redirect target. A failed processor outcome is
// returned as a *RejectedError.
func (uc *SubmitPaymentUseCase) Execute(ctx context.Context, cmd SubmitPaymentInput) (_ *SubmitPaymentResult, err error) {
	obs := uc.obs
	logger := logctx.FromOr(ctx, obs.log).With(
		observability.F("use_case", useCaseSubmitPayment),
		observability.F("order_no", cmd.OrderNo),
		observability.F("instrument_id", cmd.InstrumentID),
	)
	ctx, span := obs.tel.Tracer().Start(ctx, spanPrefix+"SubmitPayment",
		attribute.String("use_case", useCaseSubmitPayment),
		attribute.String("order.no", cmd.OrderNo),
	)
	start := time.Now()
	statusText := "OK"
	defer func() { obs.done(ctx, span, logger, useCaseSubmitPayment, start, statusText, err) }()

	orderNo := strings.TrimSpace(cmd.OrderNo)
	if orderNo == "" {
		statusText = "ORDER_NO_REQUIRED"
		return nil, newValidation("order number is required")
	}
	if cmd.InstrumentID == "" {
		statusText = "INSTRUMENT_ID_REQUIRED"
		return nil, newValidation("payment instrument id is required")
	}

	o, err := uc.orders.Get(ctx, orderNo)
	if err != nil {
		statusText = "ORDER_LOOKUP_FAILED"
		if errors.Is(err, domorder.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderNo)
		}
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	inst, err := uc.instruments.Get(ctx, cmd.InstrumentID)
	if err != nil {
		statusText = "INSTRUMENT_LOOKUP_FAILED"
		if errors.Is(err, dompay.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment instrument %s", ErrNotFound, cmd.InstrumentID)
		}
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	if inst.OrderNo != o.No {
		statusText = "INSTRUMENT_MISMATCH"
		return nil, ErrInstrumentMismatch
	}

	hres := uc.processor.Handle(ctx, o, inst)
	if hres.Failed() {
		statusText = hres.Outcome.Status()
		return nil, &RejectedError{Operation: "handle", Outcome: hres.Outcome}
	}
	span.SetAttributes(attribute.String("payment.transaction_id", hres.TransactionID()))

	ares := uc.processor.Authorize(ctx, o.No, inst, inst.Transaction.Processor)
	if ares.Failed() {
		statusText = ares.Outcome.Status()
		return nil, &RejectedError{Operation: "authorize", Outcome: ares.Outcome}
	}

	logger.Info("payment_submitted",
		observability.F("transaction_id", hres.TransactionID()),
		observability.F("redirect_url", ares.RedirectURL()),
	)
	return &SubmitPaymentResult{
		OrderNo:       o.No,
		TransactionID: hres.TransactionID(),
		RedirectURL:   ares.RedirectURL(),
	}, nil
}
