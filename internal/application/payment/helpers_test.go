package payment

import (
	"context"
	"testing"
	"time"

	domorder "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.UnixMilli(1700000000000)

func observedTel() (observability.Observability, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return infraobs.New(infraobs.Options{Logger: zaplogger.New(zap.New(core))}), logs
}

func acuotazProcessor() *dompay.Processor { return &dompay.Processor{ID: "ACUOTAZ"} }

func acuotazCatalog() *memory.Catalog {
	return memory.NewCatalog(dompay.NewMethod(dompay.MethodID, acuotazProcessor()))
}

func mustOrder(t *testing.T, no, currency string) *domorder.Order {
	t.Helper()
	o, err := domorder.New(no, currency)
	require.NoError(t, err)
	return o
}

// storedInstrument inserts an instrument for orderNo and returns the caller's copy.
func storedInstrument(t *testing.T, store dompay.InstrumentStore, id, orderNo, amount string) *dompay.Instrument {
	t.Helper()
	inst := dompay.NewInstrument(id, orderNo, decimal.RequireFromString(amount))
	require.NoError(t, store.Insert(context.Background(), inst))
	return inst
}

// faultyStore wraps the memory store and injects failures into its transactions.
type faultyStore struct {
	*memory.InstrumentStore

	beginErr  error
	updateErr error
	panicWith any
	commitErr error

	commits   int
	rollbacks int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{InstrumentStore: memory.NewInstrumentStore()}
}

func (s *faultyStore) Begin(ctx context.Context) (dompay.InstrumentTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	tx, err := s.InstrumentStore.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{InstrumentTx: tx, s: s}, nil
}

type faultyTx struct {
	dompay.InstrumentTx
	s *faultyStore
}

func (t *faultyTx) fault() error {
	if t.s.panicWith != nil {
		panic(t.s.panicWith)
	}
	return t.s.updateErr
}

func (t *faultyTx) UpdateTransaction(ctx context.Context, id, txID string, p *dompay.Processor) error {
	if err := t.fault(); err != nil {
		return err
	}
	return t.InstrumentTx.UpdateTransaction(ctx, id, txID, p)
}

func (t *faultyTx) BindProcessor(ctx context.Context, id string, p *dompay.Processor) error {
	if err := t.fault(); err != nil {
		return err
	}
	return t.InstrumentTx.BindProcessor(ctx, id, p)
}

func (t *faultyTx) Commit() error {
	if t.s.commitErr != nil {
		return t.s.commitErr
	}
	t.s.commits++
	return t.InstrumentTx.Commit()
}

func (t *faultyTx) Rollback() error {
	t.s.rollbacks++
	return t.InstrumentTx.Rollback()
}
