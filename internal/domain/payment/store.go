package payment

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("payment: instrument not found")
	ErrConflict = errors.New("payment: instrument already exists")
	ErrTxDone   = errors.New("payment: transaction already committed or rolled back")
)

// InstrumentStore persists payment instruments. Writes to an existing
// instrument's transaction only happen through an InstrumentTx.
type InstrumentStore interface {
	Insert(ctx context.Context, instrument *Instrument) error
	Get(ctx context.Context, id string) (*Instrument, error)
	Begin(ctx context.Context) (InstrumentTx, error)
}

// InstrumentTx is a scoped unit of work over instrument transactions. Either
// every staged write becomes visible on Commit or none does.
type InstrumentTx interface {
	// UpdateTransaction stages the transaction id and processor of an instrument.
	UpdateTransaction(ctx context.Context, instrumentID, transactionID string, processor *Processor) error
	// BindProcessor stages only the processor reference.
	BindProcessor(ctx context.Context, instrumentID string, processor *Processor) error
	Commit() error
	Rollback() error
}
