package postgres

import "time"

type leagueTableModel struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Sport     string    `db:"sport"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	Code  string `db:"code"`
	Name  string `db:"name"`
	Sport string `db:"sport"`
}
