package checkout

import (
	"errors"
	"fmt"

	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
)

var (
	ErrInvalidInput       = errors.New("checkout: invalid input")
	ErrNotFound           = errors.New("checkout: not found")
	ErrConflict           = errors.New("checkout: already exists")
	ErrInstrumentMismatch = errors.New("checkout: payment instrument belongs to another order")
	ErrRepository         = errors.New("checkout: repository failure")
	ErrPaymentRejected    = errors.New("checkout: payment rejected")
)

// RejectedError carries the failed processor outcome. It matches
// ErrPaymentRejected with errors.Is.
type RejectedError struct {
	Operation string
	Outcome   dompay.Outcome
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPaymentRejected, e.Operation, dompay.Describe(e.Outcome))
}

func (e *RejectedError) Is(target error) bool { return target == ErrPaymentRejected }

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
