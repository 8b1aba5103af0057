package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
)

const stateComponent = "payment_state"

// NewTransactionID joins the order number and the unix millisecond timestamp.
// Two calls for the same order within one millisecond collide.
func NewTransactionID(orderNo string, at time.Time) string {
	return orderNo + "_" + strconv.FormatInt(at.UnixMilli(), 10)
}

// StateManager applies the two-field instrument mutation inside a store
// transaction. The in-memory instrument is only updated after commit.
type StateManager struct {
	store dompay.InstrumentStore
	now   func() time.Time
	log   observability.Logger
}

func NewStateManager(store dompay.InstrumentStore, logger observability.Logger) *StateManager {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &StateManager{
		store: store,
		now:   time.Now,
		log:   logger.With(observability.F("component", stateComponent)),
	}
}

// MarkPending stamps the instrument with a fresh transaction id and binds it
// to processor. It returns the new transaction id.
func (m *StateManager) MarkPending(ctx context.Context, orderNo string, inst *dompay.Instrument, processor *dompay.Processor) (string, error) {
	if inst == nil {
		return "", ErrMissingInstrument
	}
	if processor == nil {
		return "", ErrProcessorRequired
	}

	txID := NewTransactionID(orderNo, m.now())
	err := m.within(ctx, func(tx dompay.InstrumentTx) error {
		return tx.UpdateTransaction(ctx, inst.ID, txID, processor)
	})
	if err != nil {
		return "", err
	}

	inst.Transaction.TransactionID = txID
	inst.Transaction.Processor = processor.Clone()

	scopedLogger(ctx, m.log, observability.F("component", stateComponent)).Info("payment_transaction_id_set",
		observability.F("order_no", orderNo),
		observability.F("instrument_id", inst.ID),
		observability.F("transaction_id", txID),
		observability.F("processor_id", processor.ID),
	)
	return txID, nil
}

// BindProcessor (re-)binds the instrument's transaction to processor.
func (m *StateManager) BindProcessor(ctx context.Context, inst *dompay.Instrument, processor *dompay.Processor) error {
	if inst == nil {
		return ErrMissingInstrument
	}
	if processor == nil {
		return ErrProcessorRequired
	}

	err := m.within(ctx, func(tx dompay.InstrumentTx) error {
		return tx.BindProcessor(ctx, inst.ID, processor)
	})
	if err != nil {
		return err
	}

	inst.Transaction.Processor = processor.Clone()
	return nil
}

// within runs fn in a store transaction: commit on normal return, rollback on
// error or panic. A panic is converted into a *PanicError.
func (m *StateManager) within(ctx context.Context, fn func(tx dompay.InstrumentTx) error) (err error) {
	tx, err := m.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}

	committed := false
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, dompay.ErrTxDone) {
			scopedLogger(ctx, m.log, observability.F("component", stateComponent)).Warn("payment_state_rollback_failed", observability.Err(rbErr))
			err = errors.Join(err, fmt.Errorf("%w: rollback: %w", ErrStore, rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	committed = true
	return nil
}
