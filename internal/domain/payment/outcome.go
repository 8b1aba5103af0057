package payment

import "fmt"

// ErrorCode classifies a failed outcome.
type ErrorCode string

const (
	CodeMissingOrder                  ErrorCode = "MISSING_ORDER"
	CodeMissingPaymentInstrument      ErrorCode = "MISSING_PAYMENT_INSTRUMENT"
	CodeInvalidAmount                 ErrorCode = "INVALID_AMOUNT"
	CodeVerificationException         ErrorCode = "VERIFICATION_EXCEPTION"
	CodePaymentMethodNotConfigured    ErrorCode = "PAYMENT_METHOD_NOT_CONFIGURED"
	CodePaymentProcessorNotConfigured ErrorCode = "PAYMENT_PROCESSOR_NOT_CONFIGURED"
	CodeHandleException               ErrorCode = "HANDLE_EXCEPTION"
	CodeAuthorizeException            ErrorCode = "AUTHORIZE_EXCEPTION"
)

// Outcome is the closed set of results produced by the payment processor.
// The concrete variants are Success, ConfigurationError, ValidationError and
// UnexpectedError.
type Outcome interface {
	outcome()
	// Status is a short UPPER_SNAKE label suitable for logs and span status.
	Status() string
}

// Success is returned when Handle stamped the transaction or Authorize prepared
// the redirect. RedirectURL is only set by Authorize.
type Success struct {
	TransactionID string
	RedirectURL   string
}

// ConfigurationError is an operator-fixable condition; retrying without a
// configuration change gives the same result.
type ConfigurationError struct {
	Code    ErrorCode
	Message string
}

// ValidationError is permanent for the given input.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

// UnexpectedError wraps a fault caught at the processor boundary.
type UnexpectedError struct {
	Code ErrorCode
	Err  error
}

func (Success) outcome()            {}
func (ConfigurationError) outcome() {}
func (ValidationError) outcome()    {}
func (UnexpectedError) outcome()    {}

func (Success) Status() string              { return "OK" }
func (e ConfigurationError) Status() string { return string(e.Code) }
func (e ValidationError) Status() string    { return string(e.Code) }
func (e UnexpectedError) Status() string    { return string(e.Code) }

func (e UnexpectedError) Message() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return e.Err.Error()
}

// HandleResult is the outcome of Processor.Handle.
type HandleResult struct {
	Outcome Outcome
}

func (r HandleResult) Success() bool {
	_, ok := r.Outcome.(Success)
	return ok
}

func (r HandleResult) Failed() bool { return !r.Success() }

// ErrorMessage is empty for successful results and for validation failures,
// which are reported through logs only.
func (r HandleResult) ErrorMessage() string {
	switch o := r.Outcome.(type) {
	case ConfigurationError:
		return o.Message
	case UnexpectedError:
		return o.Message()
	default:
		return ""
	}
}

func (r HandleResult) TransactionID() string {
	if s, ok := r.Outcome.(Success); ok {
		return s.TransactionID
	}
	return ""
}

// AuthorizeResult is the outcome of Processor.Authorize.
type AuthorizeResult struct {
	Outcome Outcome
}

func (r AuthorizeResult) Authorized() bool {
	_, ok := r.Outcome.(Success)
	return ok
}

func (r AuthorizeResult) Failed() bool { return !r.Authorized() }

func (r AuthorizeResult) RedirectURL() string {
	if s, ok := r.Outcome.(Success); ok {
		return s.RedirectURL
	}
	return ""
}

// Describe renders any outcome as a single human-readable line.
func Describe(o Outcome) string {
	switch v := o.(type) {
	case Success:
		return "ok"
	case ConfigurationError:
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	case ValidationError:
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	case UnexpectedError:
		return fmt.Sprintf("%s: %s", v.Code, v.Message())
	default:
		return "unknown outcome"
	}
}
