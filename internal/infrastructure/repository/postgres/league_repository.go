package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/league"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("code", code)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by code query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by code: %w", err)
	}

	return league.League{
		Code:  row.Code,
		Name:  row.Name,
		Sport: row.Sport,
	}, true, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("code").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.League{
			Code:  row.Code,
			Name:  row.Name,
			Sport: row.Sport,
		})
	}

	return out, nil
}

// Ensure seeds a league row, refreshing the display name and sport when the
// code already exists.
func (r *LeagueRepository) Ensure(ctx context.Context, l league.League) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validate league: %w", err)
	}

	query, args, err := qb.InsertModel("leagues", leagueInsertModel{
		Code:  l.Code,
		Name:  l.Name,
		Sport: l.Sport,
	}, `ON CONFLICT (code)
DO UPDATE SET
    name = EXCLUDED.name,
    sport = EXCLUDED.sport,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build ensure league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure league %s: %w", l.Code, err)
	}

	return nil
}
