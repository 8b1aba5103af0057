package payment

import (
	"github.com/shopspring/decimal"
)

// Transaction is the mutable financial sub-record of an instrument. Only
// TransactionID and Processor are written by the payment flow.
type Transaction struct {
	Amount        decimal.Decimal
	TransactionID string
	Processor     *Processor
}

// Instrument is the shopper's chosen payment method attached to an order.
type Instrument struct {
	ID          string
	OrderNo     string
	MethodID    string
	Transaction Transaction
}

func NewInstrument(id, orderNo string, amount decimal.Decimal) *Instrument {
	return &Instrument{
		ID:       id,
		OrderNo:  orderNo,
		MethodID: MethodID,
		Transaction: Transaction{
			Amount: amount,
		},
	}
}

func (i *Instrument) Clone() *Instrument {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Transaction.Processor = i.Transaction.Processor.Clone()
	return &clone
}

// ProcessorID returns the bound processor id or "" when unbound.
func (t Transaction) ProcessorID() string {
	if t.Processor == nil {
		return ""
	}
	return t.Processor.ID
}
