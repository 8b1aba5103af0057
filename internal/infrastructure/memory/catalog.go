package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
)

// Catalog is an in-memory payment method catalog.
type Catalog struct {
	mu      sync.RWMutex
	methods map[string]*domain.Method
}

func NewCatalog(methods ...*domain.Method) *Catalog {
	c := &Catalog{methods: make(map[string]*domain.Method, len(methods))}
	for _, m := range methods {
		c.Put(m)
	}
	return c
}

func (c *Catalog) Put(m *domain.Method) {
	if m == nil || m.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[m.ID] = m
}

// PaymentMethod returns (nil, nil) for unknown ids.
func (c *Catalog) PaymentMethod(ctx context.Context, id string) (*domain.Method, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.methods[id], nil
}
