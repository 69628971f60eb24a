package postgres

import "time"

type gameLogTableModel struct {
	ID             int64     `db:"id"`
	PlayerID       int64     `db:"player_id"`
	TeamID         int64     `db:"team_id"`
	GameID         int64     `db:"game_id"`
	OpponentTeamID int64     `db:"opponent_team_id"`
	PropType       string    `db:"prop_type"`
	Line           float64   `db:"line"`
	ActualValue    float64   `db:"actual_value"`
	Hit            bool      `db:"hit"`
	GameDate       time.Time `db:"game_date"`
	Season         string    `db:"season"`
	CreatedAt      time.Time `db:"created_at"`
}

type gameLogInsertModel struct {
	PlayerID       int64     `db:"player_id"`
	TeamID         int64     `db:"team_id"`
	GameID         int64     `db:"game_id"`
	OpponentTeamID int64     `db:"opponent_team_id"`
	PropType       string    `db:"prop_type"`
	Line           float64   `db:"line"`
	ActualValue    float64   `db:"actual_value"`
	Hit            bool      `db:"hit"`
	GameDate       time.Time `db:"game_date"`
	Season         string    `db:"season"`
}

type comboRowModel struct {
	PlayerID int64  `db:"player_id"`
	PropType string `db:"prop_type"`
	Season   string `db:"season"`
}

type opponentTotalRowModel struct {
	TeamID   int64   `db:"opponent_team_id"`
	PropType string  `db:"prop_type"`
	Season   string  `db:"season"`
	AvgValue float64 `db:"avg_value"`
	Games    int     `db:"games"`
}
