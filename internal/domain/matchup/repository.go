package matchup

import "context"

// Repository describes matchup-rank persistence needs from use cases.
// GetLatest returns the most recently updated row for the key.
type Repository interface {
	GetLatest(ctx context.Context, teamID int64, propType, season string) (Rank, bool, error)
	UpsertMany(ctx context.Context, ranks []Rank) error
}
