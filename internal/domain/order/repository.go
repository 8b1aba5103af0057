package order

import "context"

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	Get(ctx context.Context, orderNo string) (*Order, error)
}
