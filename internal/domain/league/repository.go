package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	GetByCode(ctx context.Context, code string) (League, bool, error)
	List(ctx context.Context) ([]League, error)
	Ensure(ctx context.Context, l League) error
}
