package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.No == "" {
		return fmt.Errorf("order repository: order number is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.No]; exists {
		return domain.ErrConflict
	}

	r.orders[order.No] = order.Clone()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, orderNo string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderNo]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return order.Clone(), nil
}
