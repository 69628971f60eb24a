package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	ExternalRef sql.NullString `db:"external_ref"`
	TeamID      sql.NullInt64  `db:"team_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type playerInsertModel struct {
	Name        string  `db:"name"`
	ExternalRef *string `db:"external_ref"`
	TeamID      *int64  `db:"team_id"`
}
