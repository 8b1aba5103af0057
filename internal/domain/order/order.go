package order

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrConflict        = errors.New("order: already exists")
	ErrInvalidNumber   = errors.New("order: order number is required")
	ErrInvalidCurrency = errors.New("order: currency code must be a 3-letter ISO code")
)

// Order is the slice of an order-management order consumed by the payment flow.
// It is immutable once registered.
type Order struct {
	No           string
	CurrencyCode string
	CreatedAt    time.Time
}

func New(no, currencyCode string) (*Order, error) {
	no = strings.TrimSpace(no)
	if no == "" {
		return nil, ErrInvalidNumber
	}
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))
	if len(currencyCode) != 3 {
		return nil, ErrInvalidCurrency
	}

	return &Order{
		No:           no,
		CurrencyCode: currencyCode,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
