package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
)

// InstrumentStore keeps instruments in memory. Transactions stage writes on
// private copies and swap them in under the store lock on Commit.
type InstrumentStore struct {
	mu          sync.RWMutex
	instruments map[string]*domain.Instrument
}

func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{
		instruments: make(map[string]*domain.Instrument),
	}
}

func (s *InstrumentStore) Insert(ctx context.Context, inst *domain.Instrument) error {
	_ = ctx
	if inst == nil || inst.ID == "" {
		return fmt.Errorf("instrument store: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instruments[inst.ID]; exists {
		return domain.ErrConflict
	}
	s.instruments[inst.ID] = inst.Clone()
	return nil
}

func (s *InstrumentStore) Get(ctx context.Context, id string) (*domain.Instrument, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inst.Clone(), nil
}

func (s *InstrumentStore) Begin(ctx context.Context) (domain.InstrumentTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &instrumentTx{store: s, staged: make(map[string]*domain.Instrument)}, nil
}

type instrumentTx struct {
	store  *InstrumentStore
	staged map[string]*domain.Instrument
	done   bool
}

func (tx *instrumentTx) stage(id string) (*domain.Instrument, error) {
	if tx.done {
		return nil, domain.ErrTxDone
	}
	if inst, ok := tx.staged[id]; ok {
		return inst, nil
	}

	tx.store.mu.RLock()
	current, ok := tx.store.instruments[id]
	tx.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	inst := current.Clone()
	tx.staged[id] = inst
	return inst, nil
}

func (tx *instrumentTx) UpdateTransaction(ctx context.Context, instrumentID, transactionID string, processor *domain.Processor) error {
	_ = ctx
	inst, err := tx.stage(instrumentID)
	if err != nil {
		return err
	}
	inst.Transaction.TransactionID = transactionID
	inst.Transaction.Processor = processor.Clone()
	return nil
}

func (tx *instrumentTx) BindProcessor(ctx context.Context, instrumentID string, processor *domain.Processor) error {
	_ = ctx
	inst, err := tx.stage(instrumentID)
	if err != nil {
		return err
	}
	inst.Transaction.Processor = processor.Clone()
	return nil
}

func (tx *instrumentTx) Commit() error {
	if tx.done {
		return domain.ErrTxDone
	}
	tx.done = true

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	for id := range tx.staged {
		if _, ok := tx.store.instruments[id]; !ok {
			return fmt.Errorf("instrument store: commit %s: %w", id, domain.ErrNotFound)
		}
	}
	for id, inst := range tx.staged {
		tx.store.instruments[id] = inst
	}
	return nil
}

func (tx *instrumentTx) Rollback() error {
	if tx.done {
		return domain.ErrTxDone
	}
	tx.done = true
	tx.staged = nil
	return nil
}
