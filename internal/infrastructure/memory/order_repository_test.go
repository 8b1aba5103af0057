package memory

import (
	"context"
	"testing"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepository()

	o, err := domain.New("A1", "usd")
	require.NoError(t, err)
	require.NoError(t, r.Insert(ctx, o))
	assert.ErrorIs(t, r.Insert(ctx, o), domain.ErrConflict)
	assert.Error(t, r.Insert(ctx, nil))

	got, err := r.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "USD", got.CurrencyCode)
	assert.NotSame(t, o, got)

	_, err = r.Get(ctx, "B2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
