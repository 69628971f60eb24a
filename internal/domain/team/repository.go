package team

import (
	"context"
	"errors"
)

// ErrAlreadyExists reports a unique-constraint hit during creation. Callers
// re-query and use the row that won the race.
var ErrAlreadyExists = errors.New("team already exists")

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByAbbreviation(ctx context.Context, leagueCode, abbreviation string) (Team, bool, error)
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	Create(ctx context.Context, t Team) (int64, error)
	GetAlias(ctx context.Context, leagueCode, providerAbbr string) (int64, bool, error)
	CreateAlias(ctx context.Context, a Alias) error
}
