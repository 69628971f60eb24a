package gamelog

import "context"

// Repository describes observation persistence needs from use cases.
// InsertMany is insert-or-ignore keyed by (player, game, prop_type);
// duplicates from a re-run are silently dropped.
type Repository interface {
	InsertMany(ctx context.Context, logs []Log) error
	ListRecent(ctx context.Context, playerID int64, propType, season string, limit int) ([]Log, error)
	ListCombos(ctx context.Context, limit, offset int) ([]Combo, error)
	ListOpponentTotals(ctx context.Context, season string) ([]OpponentTotal, error)
}
