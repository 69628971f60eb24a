package game

import "context"

// Repository describes game persistence needs from use cases. Create uses
// insert-or-ignore keyed by external ref; a conflicting insert is not an
// error, the existing row's id is returned.
type Repository interface {
	GetByExternalRef(ctx context.Context, externalRef string) (Game, bool, error)
	Create(ctx context.Context, g Game) (int64, error)
}
