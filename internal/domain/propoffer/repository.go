package propoffer

import "context"

// Repository describes market-quote persistence needs from use cases.
// UpsertMany deduplicates on the composite conflict key
// (league, game, player, prop_type, line), keeping the best side odds.
type Repository interface {
	UpsertMany(ctx context.Context, offerings []Offering) error
	GetLatest(ctx context.Context, playerID int64, propType, source string) (Offering, bool, error)
}
