package postgres

import (
	"database/sql"
	"time"
)

type propOfferingTableModel struct {
	ID              int64           `db:"id"`
	LeagueCode      string          `db:"league_code"`
	GameExternalRef string          `db:"game_external_ref"`
	PlayerID        int64           `db:"player_id"`
	PropType        string          `db:"prop_type"`
	Line            float64         `db:"line"`
	OverOdds        sql.NullFloat64 `db:"over_odds"`
	UnderOdds       sql.NullFloat64 `db:"under_odds"`
	Source          string          `db:"source"`
	UpdatedAt       time.Time       `db:"updated_at"`
	CreatedAt       time.Time       `db:"created_at"`
}

type propOfferingInsertModel struct {
	LeagueCode      string   `db:"league_code"`
	GameExternalRef string   `db:"game_external_ref"`
	PlayerID        int64    `db:"player_id"`
	PropType        string   `db:"prop_type"`
	Line            float64  `db:"line"`
	OverOdds        *float64 `db:"over_odds"`
	UnderOdds       *float64 `db:"under_odds"`
	Source          string   `db:"source"`
}
