package postgres_test

import (
	"context"
	"os"
	"testing"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore skips unless DB_DSN points at a reachable database.
func newStore(t *testing.T) *postgres.InstrumentStore {
	t.Helper()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set; skipping DB integration test")
	}
	ctx := context.Background()
	db, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := postgres.NewInstrumentStore(db)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestInstrumentStoreCommit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	inst := domain.NewInstrument(uuid.NewString(), "A1", decimal.RequireFromString("50"))
	require.NoError(t, store.Insert(ctx, inst))
	assert.ErrorIs(t, store.Insert(ctx, inst), domain.ErrConflict)

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpdateTransaction(ctx, inst.ID, "A1_1700000000000", &domain.Processor{ID: "ACUOTAZ"}))
	require.NoError(t, tx.Commit())
	assert.ErrorIs(t, tx.Rollback(), domain.ErrTxDone)

	got, err := store.Get(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1_1700000000000", got.Transaction.TransactionID)
	assert.Equal(t, "ACUOTAZ", got.Transaction.ProcessorID())
	assert.True(t, got.Transaction.Amount.Equal(decimal.RequireFromString("50")))
}

func TestInstrumentStoreRollback(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	inst := domain.NewInstrument(uuid.NewString(), "A2", decimal.RequireFromString("19.5"))
	require.NoError(t, store.Insert(ctx, inst))

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.BindProcessor(ctx, inst.ID, &domain.Processor{ID: "ACUOTAZ"}))
	require.NoError(t, tx.Rollback())

	got, err := store.Get(ctx, inst.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Transaction.ProcessorID())
	assert.Empty(t, got.Transaction.TransactionID)
}

func TestInstrumentStoreNotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	assert.ErrorIs(t, tx.BindProcessor(ctx, uuid.NewString(), &domain.Processor{ID: "ACUOTAZ"}), domain.ErrNotFound)
}
