package postgres

import (
	"database/sql"
	"time"
)

type playerAnalyticsTableModel struct {
	ID            int64           `db:"id"`
	PlayerID      int64           `db:"player_id"`
	PropType      string          `db:"prop_type"`
	Season        string          `db:"season"`
	HitRateL5     float64         `db:"hit_rate_l5"`
	HitRateL10    float64         `db:"hit_rate_l10"`
	HitRateL20    float64         `db:"hit_rate_l20"`
	CurrentStreak int             `db:"current_streak"`
	H2HAvg        sql.NullFloat64 `db:"h2h_avg"`
	SeasonAvg     sql.NullFloat64 `db:"season_avg"`
	MatchupRank   sql.NullFloat64 `db:"matchup_rank"`
	EVPercent     sql.NullFloat64 `db:"ev_percent"`
	Sport         sql.NullString  `db:"sport"`
	UpdatedAt     time.Time       `db:"updated_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

type playerAnalyticsInsertModel struct {
	PlayerID      int64    `db:"player_id"`
	PropType      string   `db:"prop_type"`
	Season        string   `db:"season"`
	HitRateL5     float64  `db:"hit_rate_l5"`
	HitRateL10    float64  `db:"hit_rate_l10"`
	HitRateL20    float64  `db:"hit_rate_l20"`
	CurrentStreak int      `db:"current_streak"`
	H2HAvg        *float64 `db:"h2h_avg"`
	SeasonAvg     *float64 `db:"season_avg"`
	MatchupRank   *float64 `db:"matchup_rank"`
	EVPercent     *float64 `db:"ev_percent"`
	Sport         *string  `db:"sport"`
}
