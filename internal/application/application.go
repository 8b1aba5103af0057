package application

import "context"

// UseCase is the shape shared by command-style application services.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
