package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/game"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByExternalRef(ctx context.Context, externalRef string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("external_ref", externalRef)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game by external ref query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by external ref: %w", err)
	}

	return gameFromRow(row), true, nil
}

// Create inserts a game keyed by its external ref. A conflicting insert is
// resolved by returning the id of the row that already exists.
func (r *GameRepository) Create(ctx context.Context, g game.Game) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("validate game: %w", err)
	}

	query, args, err := qb.InsertModel("games", gameInsertModel{
		LeagueCode:  g.LeagueCode,
		ExternalRef: g.ExternalRef,
		HomeTeamID:  g.HomeTeamID,
		AwayTeamID:  g.AwayTeamID,
		GameDate:    g.GameDate,
		Season:      g.Season,
	}, `ON CONFLICT (external_ref) DO NOTHING RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build insert game query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err == nil {
		return id, nil
	}
	if !isNotFound(err) {
		return 0, fmt.Errorf("insert game ref=%s: %w", g.ExternalRef, err)
	}

	// DO NOTHING returned no row; another worker inserted first.
	existing, ok, err := r.GetByExternalRef(ctx, g.ExternalRef)
	if err != nil {
		return 0, fmt.Errorf("lookup game after conflict ref=%s: %w", g.ExternalRef, err)
	}
	if !ok {
		return 0, fmt.Errorf("game vanished after conflict ref=%s", g.ExternalRef)
	}

	return existing.ID, nil
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		ID:          row.ID,
		LeagueCode:  row.LeagueCode,
		ExternalRef: row.ExternalRef,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		GameDate:    row.GameDate,
		Season:      row.Season,
	}
}
