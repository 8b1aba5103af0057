package memory

import (
	"context"
	"testing"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentStoreInsertGet(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumentStore()

	inst := domain.NewInstrument("i1", "A1", decimal.NewFromInt(50))
	require.NoError(t, s.Insert(ctx, inst))
	assert.ErrorIs(t, s.Insert(ctx, inst), domain.ErrConflict)
	assert.Error(t, s.Insert(ctx, &domain.Instrument{}))

	got, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	got.Transaction.TransactionID = "mutated"

	again, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, again.Transaction.TransactionID, "Get returns copies")

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInstrumentTxCommit(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumentStore()
	require.NoError(t, s.Insert(ctx, domain.NewInstrument("i1", "A1", decimal.NewFromInt(50))))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	proc := &domain.Processor{ID: "ACUOTAZ"}
	require.NoError(t, tx.UpdateTransaction(ctx, "i1", "A1_1", proc))

	staged, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, staged.Transaction.TransactionID, "writes are invisible before commit")

	require.NoError(t, tx.Commit())
	proc.ID = "CHANGED"

	got, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "A1_1", got.Transaction.TransactionID)
	assert.Equal(t, "ACUOTAZ", got.Transaction.ProcessorID())

	assert.ErrorIs(t, tx.Commit(), domain.ErrTxDone)
	assert.ErrorIs(t, tx.Rollback(), domain.ErrTxDone)
	assert.ErrorIs(t, tx.BindProcessor(ctx, "i1", proc), domain.ErrTxDone)
}

func TestInstrumentTxRollback(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumentStore()
	require.NoError(t, s.Insert(ctx, domain.NewInstrument("i1", "A1", decimal.NewFromInt(50))))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.BindProcessor(ctx, "i1", &domain.Processor{ID: "ACUOTAZ"}))
	assert.ErrorIs(t, tx.UpdateTransaction(ctx, "missing", "x", nil), domain.ErrNotFound)
	require.NoError(t, tx.Rollback())

	got, err := s.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Nil(t, got.Transaction.Processor)
}

func TestInstrumentStoreBeginCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewInstrumentStore().Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
