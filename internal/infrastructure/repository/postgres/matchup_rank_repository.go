package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/matchup"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type MatchupRankRepository struct {
	db *sqlx.DB
}

func NewMatchupRankRepository(db *sqlx.DB) *MatchupRankRepository {
	return &MatchupRankRepository{db: db}
}

func (r *MatchupRankRepository) GetLatest(ctx context.Context, teamID int64, propType, season string) (matchup.Rank, bool, error) {
	query, args, err := qb.Select("*").From("matchup_ranks").
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("prop_type", propType),
			qb.Eq("season", season),
		).
		OrderBy("updated_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return matchup.Rank{}, false, fmt.Errorf("build get latest matchup rank query: %w", err)
	}

	var row matchupRankTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchup.Rank{}, false, nil
		}
		return matchup.Rank{}, false, fmt.Errorf("get latest matchup rank: %w", err)
	}

	return matchup.Rank{
		ID:        row.ID,
		TeamID:    row.TeamID,
		PropType:  row.PropType,
		Season:    row.Season,
		RankPct:   row.RankPct,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *MatchupRankRepository) UpsertMany(ctx context.Context, ranks []matchup.Rank) error {
	if len(ranks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert matchup ranks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, rank := range ranks {
		if err := rank.Validate(); err != nil {
			return fmt.Errorf("validate matchup rank: %w", err)
		}

		query, args, err := qb.InsertModel("matchup_ranks", matchupRankInsertModel{
			TeamID:   rank.TeamID,
			PropType: rank.PropType,
			Season:   rank.Season,
			RankPct:  rank.RankPct,
		}, `ON CONFLICT (team_id, prop_type, season)
DO UPDATE SET
    rank_pct = EXCLUDED.rank_pct,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert matchup rank query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert matchup rank team=%d prop=%s: %w", rank.TeamID, rank.PropType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert matchup ranks tx: %w", err)
	}

	return nil
}
