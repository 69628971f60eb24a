package analytics

import "context"

// Repository describes analytics persistence needs from use cases. Upsert
// conflicts on (player_id, prop_type, season); rolling fields overwrite,
// optional fields COALESCE against the stored value.
type Repository interface {
	Upsert(ctx context.Context, row PlayerProp) error
	Get(ctx context.Context, playerID int64, propType, season string) (PlayerProp, bool, error)
}
