package payment

import (
	"errors"
	"fmt"
	"runtime/debug"

	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
)

var (
	ErrMissingOrder       = errors.New("payment: order is required")
	ErrMissingInstrument  = errors.New("payment: payment instrument is required")
	ErrInvalidAmount      = errors.New("payment: amount must be greater than zero")
	ErrVerificationFault  = errors.New("payment: verification fault")
	ErrProcessorRequired  = errors.New("payment: payment processor is required")
	ErrStore              = errors.New("payment: instrument store failure")
	ErrCatalog            = errors.New("payment: payment method lookup failed")
	ErrInvalidRedirectURL = errors.New("payment: invalid redirect base url")
)

// VerificationError reports why an order/instrument pair failed verification.
type VerificationError struct {
	Code    dompay.ErrorCode
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification: %s: %s", e.Code, e.Message)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// PanicError carries a recovered panic value and the stack at recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func recovered(r any) *PanicError {
	return &PanicError{Value: r, Stack: debug.Stack()}
}

// stackOf returns the recovered stack when err carries one.
func stackOf(err error) string {
	var perr *PanicError
	if errors.As(err, &perr) {
		return string(perr.Stack)
	}
	return ""
}
