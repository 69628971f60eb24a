package postgres

import "time"

type teamTableModel struct {
	ID           int64     `db:"id"`
	LeagueCode   string    `db:"league_code"`
	Abbreviation string    `db:"abbreviation"`
	Name         string    `db:"name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	LeagueCode   string `db:"league_code"`
	Abbreviation string `db:"abbreviation"`
	Name         string `db:"name"`
}

type teamAliasTableModel struct {
	ID           int64     `db:"id"`
	LeagueCode   string    `db:"league_code"`
	ProviderAbbr string    `db:"provider_abbr"`
	TeamID       int64     `db:"team_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type teamAliasInsertModel struct {
	LeagueCode   string `db:"league_code"`
	ProviderAbbr string `db:"provider_abbr"`
	TeamID       int64  `db:"team_id"`
}
