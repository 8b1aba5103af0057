package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/application"
	domorder "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability/logctx"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseRegisterOrder = "checkout.register_order"

var _ application.UseCase[RegisterOrderInput, *RegisterOrderResult] = (*RegisterOrderUseCase)(nil)

// RegisterOrderUseCase records an order placed by the shopper together with
// the ACUOTAZ_PM instrument that will pay for it.
type RegisterOrderUseCase struct {
	orders      domorder.Repository
	instruments InstrumentRepository
	idGenerator IDGenerator
	obs         telemetry
}

type RegisterOrderInput struct {
	OrderNo      string
	CurrencyCode string
	Amount       decimal.Decimal
}

type RegisterOrderResult struct {
	OrderNo      string
	InstrumentID string
}

func NewRegisterOrderUseCase(
	orders domorder.Repository,
	store InstrumentRepository,
	idGen IDGenerator,
	tel observability.Observability,
) *RegisterOrderUseCase {
	return &RegisterOrderUseCase{
		orders:      orders,
		instruments: store,
		idGenerator: idGen,
		obs:         newTelemetry(tel),
	}
}

// Execute validates and stores the order, then attaches a fresh instrument.
// The amount is not checked here; the payment verifier owns that rule.
func (uc *RegisterOrderUseCase) Execute(ctx context.Context, cmd RegisterOrderInput) (_ *RegisterOrderResult, err error) {
	obs := uc.obs
	logger := logctx.FromOr(ctx, obs.log).With(
		observability.F("use_case", useCaseRegisterOrder),
		observability.F("order_no", cmd.OrderNo),
	)
	ctx, span := obs.tel.Tracer().Start(ctx, spanPrefix+"RegisterOrder",
		attribute.String("use_case", useCaseRegisterOrder),
		attribute.String("order.no", cmd.OrderNo),
	)
	start := time.Now()
	statusText := "OK"
	defer func() { obs.done(ctx, span, logger, useCaseRegisterOrder, start, statusText, err) }()

	o, derr := domorder.New(cmd.OrderNo, cmd.CurrencyCode)
	if derr != nil {
		statusText = "ORDER_INVALID"
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, derr)
	}
	if err := ctx.Err(); err != nil {
		statusText = "CONTEXT_CANCELED"
		return nil, err
	}

	if err := uc.orders.Insert(ctx, o); err != nil {
		if errors.Is(err, domorder.ErrConflict) {
			statusText = "ORDER_CONFLICT"
			return nil, fmt.Errorf("%w: order %s", ErrConflict, o.No)
		}
		statusText = "ORDER_INSERT_FAILED"
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	inst := dompay.NewInstrument(uc.idGenerator.NewID(), o.No, cmd.Amount)
	if err := uc.instruments.Insert(ctx, inst); err != nil {
		statusText = "INSTRUMENT_INSERT_FAILED"
		if errors.Is(err, dompay.ErrConflict) {
			return nil, fmt.Errorf("%w: instrument %s", ErrConflict, inst.ID)
		}
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	span.SetAttributes(attribute.String("payment.instrument_id", inst.ID))
	logger.Info("order_registered",
		observability.F("instrument_id", inst.ID),
		observability.F("amount", cmd.Amount.String()),
		observability.F("currency", o.CurrencyCode),
	)
	return &RegisterOrderResult{OrderNo: o.No, InstrumentID: inst.ID}, nil
}
