package player

import (
	"context"
	"errors"
)

// ErrAlreadyExists reports a unique-constraint hit during creation.
var ErrAlreadyExists = errors.New("player already exists")

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByExternalRef(ctx context.Context, externalRef string) (Player, bool, error)
	GetByName(ctx context.Context, name string) (Player, bool, error)
	Create(ctx context.Context, p Player) (int64, error)
}
