package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/player"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByExternalRef(ctx context.Context, externalRef string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("external_ref", externalRef)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player by external ref query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by external ref: %w", err)
	}

	return playerFromRow(row), true, nil
}

// GetByName matches on the exact stored name. Oldest row wins when the same
// name was ever created twice through distinct external refs.
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("name", name)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player by name query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by name: %w", err)
	}

	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("validate player: %w", err)
	}

	var teamID *int64
	if p.TeamID > 0 {
		teamID = &p.TeamID
	}

	query, args, err := qb.InsertModel("players", playerInsertModel{
		Name:        p.Name,
		ExternalRef: nullableString(p.ExternalRef),
		TeamID:      teamID,
	}, `RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build insert player query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isUniqueViolation(err) {
			return 0, player.ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert player name=%s: %w", p.Name, err)
	}

	return id, nil
}

func playerFromRow(row playerTableModel) player.Player {
	p := player.Player{
		ID:     row.ID,
		Name:   row.Name,
		TeamID: nullInt64ToInt64(row.TeamID),
	}
	if row.ExternalRef.Valid {
		p.ExternalRef = row.ExternalRef.String
	}
	return p
}
