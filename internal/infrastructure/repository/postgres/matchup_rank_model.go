package postgres

import "time"

type matchupRankTableModel struct {
	ID        int64     `db:"id"`
	TeamID    int64     `db:"team_id"`
	PropType  string    `db:"prop_type"`
	Season    string    `db:"season"`
	RankPct   float64   `db:"rank_pct"`
	UpdatedAt time.Time `db:"updated_at"`
	CreatedAt time.Time `db:"created_at"`
}

type matchupRankInsertModel struct {
	TeamID   int64   `db:"team_id"`
	PropType string  `db:"prop_type"`
	Season   string  `db:"season"`
	RankPct  float64 `db:"rank_pct"`
}
