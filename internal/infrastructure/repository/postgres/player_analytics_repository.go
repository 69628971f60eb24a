package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/analytics"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type PlayerAnalyticsRepository struct {
	db *sqlx.DB
}

func NewPlayerAnalyticsRepository(db *sqlx.DB) *PlayerAnalyticsRepository {
	return &PlayerAnalyticsRepository{db: db}
}

// Upsert overwrites the rolling fields and merges the optional ones: a nil
// incoming value keeps whatever the row already holds, so an outage in an
// optional lookup never erases earlier enrichment.
func (r *PlayerAnalyticsRepository) Upsert(ctx context.Context, row analytics.PlayerProp) error {
	if err := row.Validate(); err != nil {
		return fmt.Errorf("validate player analytics: %w", err)
	}

	query, args, err := qb.InsertModel("player_analytics", playerAnalyticsInsertModel{
		PlayerID:      row.PlayerID,
		PropType:      row.PropType,
		Season:        row.Season,
		HitRateL5:     row.HitRateL5,
		HitRateL10:    row.HitRateL10,
		HitRateL20:    row.HitRateL20,
		CurrentStreak: row.CurrentStreak,
		H2HAvg:        row.H2HAvg,
		SeasonAvg:     row.SeasonAvg,
		MatchupRank:   row.MatchupRank,
		EVPercent:     row.EVPercent,
		Sport:         row.Sport,
	}, `ON CONFLICT (player_id, prop_type, season)
DO UPDATE SET
    hit_rate_l5 = EXCLUDED.hit_rate_l5,
    hit_rate_l10 = EXCLUDED.hit_rate_l10,
    hit_rate_l20 = EXCLUDED.hit_rate_l20,
    current_streak = EXCLUDED.current_streak,
    h2h_avg = EXCLUDED.h2h_avg,
    season_avg = EXCLUDED.season_avg,
    matchup_rank = COALESCE(EXCLUDED.matchup_rank, player_analytics.matchup_rank),
    ev_percent = COALESCE(EXCLUDED.ev_percent, player_analytics.ev_percent),
    sport = COALESCE(EXCLUDED.sport, player_analytics.sport),
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert player analytics query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player analytics player=%d prop=%s: %w", row.PlayerID, row.PropType, err)
	}

	return nil
}

func (r *PlayerAnalyticsRepository) Get(ctx context.Context, playerID int64, propType, season string) (analytics.PlayerProp, bool, error) {
	query, args, err := qb.Select("*").From("player_analytics").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("prop_type", propType),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return analytics.PlayerProp{}, false, fmt.Errorf("build get player analytics query: %w", err)
	}

	var row playerAnalyticsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return analytics.PlayerProp{}, false, nil
		}
		return analytics.PlayerProp{}, false, fmt.Errorf("get player analytics: %w", err)
	}

	return analytics.PlayerProp{
		PlayerID:      row.PlayerID,
		PropType:      row.PropType,
		Season:        row.Season,
		HitRateL5:     row.HitRateL5,
		HitRateL10:    row.HitRateL10,
		HitRateL20:    row.HitRateL20,
		CurrentStreak: row.CurrentStreak,
		H2HAvg:        nullFloat64ToPtr(row.H2HAvg),
		SeasonAvg:     nullFloat64ToPtr(row.SeasonAvg),
		MatchupRank:   nullFloat64ToPtr(row.MatchupRank),
		EVPercent:     nullFloat64ToPtr(row.EVPercent),
		Sport:         nullStringToPtr(row.Sport),
		UpdatedAt:     row.UpdatedAt,
	}, true, nil
}
