package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/propoffer"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type PropOfferingRepository struct {
	db *sqlx.DB
}

func NewPropOfferingRepository(db *sqlx.DB) *PropOfferingRepository {
	return &PropOfferingRepository{db: db}
}

// UpsertMany writes market quotes in one transaction, conflicting on the
// composite key and keeping the best price seen per side: the largest
// American odds is the most favorable to the bettor on either side.
func (r *PropOfferingRepository) UpsertMany(ctx context.Context, offerings []propoffer.Offering) error {
	if len(offerings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert prop offerings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, o := range offerings {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("validate prop offering: %w", err)
		}

		query, args, err := qb.InsertModel("prop_offerings", propOfferingInsertModel{
			LeagueCode:      o.LeagueCode,
			GameExternalRef: o.GameExternalRef,
			PlayerID:        o.PlayerID,
			PropType:        o.PropType,
			Line:            o.Line,
			OverOdds:        o.OverOdds,
			UnderOdds:       o.UnderOdds,
			Source:          o.Source,
		}, `ON CONFLICT (league_code, game_external_ref, player_id, prop_type, line)
DO UPDATE SET
    over_odds = GREATEST(COALESCE(prop_offerings.over_odds, EXCLUDED.over_odds), COALESCE(EXCLUDED.over_odds, prop_offerings.over_odds)),
    under_odds = GREATEST(COALESCE(prop_offerings.under_odds, EXCLUDED.under_odds), COALESCE(EXCLUDED.under_odds, prop_offerings.under_odds)),
    source = EXCLUDED.source,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert prop offering query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert prop offering player=%d prop=%s line=%.1f: %w", o.PlayerID, o.PropType, o.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert prop offerings tx: %w", err)
	}

	return nil
}

func (r *PropOfferingRepository) GetLatest(ctx context.Context, playerID int64, propType, source string) (propoffer.Offering, bool, error) {
	query, args, err := qb.Select("*").From("prop_offerings").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("prop_type", propType),
			qb.Eq("source", source),
		).
		OrderBy("updated_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return propoffer.Offering{}, false, fmt.Errorf("build get latest prop offering query: %w", err)
	}

	var row propOfferingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return propoffer.Offering{}, false, nil
		}
		return propoffer.Offering{}, false, fmt.Errorf("get latest prop offering: %w", err)
	}

	return propoffer.Offering{
		ID:              row.ID,
		LeagueCode:      row.LeagueCode,
		GameExternalRef: row.GameExternalRef,
		PlayerID:        row.PlayerID,
		PropType:        row.PropType,
		Line:            row.Line,
		OverOdds:        nullFloat64ToPtr(row.OverOdds),
		UnderOdds:       nullFloat64ToPtr(row.UnderOdds),
		Source:          row.Source,
		UpdatedAt:       row.UpdatedAt,
	}, true, nil
}
