package payment

import (
	"context"
	"fmt"

	domorder "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
)

const verifierComponent = "payment_verifier"

// Verifier checks that an order and its payment instrument carry usable
// payment data. It never mutates its inputs.
type Verifier struct {
	log observability.Logger
}

func NewVerifier(logger observability.Logger) *Verifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Verifier{log: logger.With(observability.F("component", verifierComponent))}
}

// Verify returns nil when the pair is payable, or a *VerificationError.
// Panics raised while reading the inputs are reported as VERIFICATION_EXCEPTION.
func (v *Verifier) Verify(ctx context.Context, o *domorder.Order, inst *dompay.Instrument) (err error) {
	logger := scopedLogger(ctx, v.log, observability.F("component", verifierComponent))

	defer func() {
		if r := recover(); r != nil {
			perr := recovered(r)
			verr := &VerificationError{
				Code:    dompay.CodeVerificationException,
				Message: fmt.Sprintf("error during payment verification: %v", r),
				Err:     fmt.Errorf("%w: %w", ErrVerificationFault, perr),
			}
			logger.Error("payment_verification_exception",
				observability.F("error", verr.Message),
				observability.F("stack", string(perr.Stack)),
			)
			err = verr
		}
	}()

	if o == nil {
		return v.fail(logger, dompay.CodeMissingOrder, "order is missing", ErrMissingOrder)
	}
	logger.Info("payment_verification_start", observability.F("order_no", o.No))

	if inst == nil {
		return v.fail(logger, dompay.CodeMissingPaymentInstrument, "payment instrument is missing", ErrMissingInstrument)
	}

	amount := inst.Transaction.Amount
	currency := o.CurrencyCode
	logger.Info("payment_verification_data",
		observability.F("order_no", o.No),
		observability.F("amount", amount.String()),
		observability.F("currency", currency),
	)

	if !amount.IsPositive() {
		return v.fail(logger, dompay.CodeInvalidAmount, "invalid payment amount: "+amount.String(), ErrInvalidAmount)
	}

	logger.Info("payment_verification_succeeded",
		observability.F("order_no", o.No),
		observability.F("amount", amount.String()),
		observability.F("currency", currency),
	)
	return nil
}

func (v *Verifier) fail(logger observability.Logger, code dompay.ErrorCode, msg string, cause error) error {
	logger.Error("payment_verification_failed",
		observability.F("code", string(code)),
		observability.F("error", msg),
	)
	return &VerificationError{Code: code, Message: msg, Err: cause}
}
