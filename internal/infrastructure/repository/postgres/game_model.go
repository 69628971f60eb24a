package postgres

import "time"

type gameTableModel struct {
	ID          int64     `db:"id"`
	LeagueCode  string    `db:"league_code"`
	ExternalRef string    `db:"external_ref"`
	HomeTeamID  int64     `db:"home_team_id"`
	AwayTeamID  int64     `db:"away_team_id"`
	GameDate    time.Time `db:"game_date"`
	Season      string    `db:"season"`
	CreatedAt   time.Time `db:"created_at"`
}

type gameInsertModel struct {
	LeagueCode  string    `db:"league_code"`
	ExternalRef string    `db:"external_ref"`
	HomeTeamID  int64     `db:"home_team_id"`
	AwayTeamID  int64     `db:"away_team_id"`
	GameDate    time.Time `db:"game_date"`
	Season      string    `db:"season"`
}
