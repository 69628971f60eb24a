package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/team"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByAbbreviation(ctx context.Context, leagueCode, abbreviation string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("league_code", leagueCode),
			qb.Eq("abbreviation", abbreviation),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by abbreviation query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by abbreviation: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return teamFromRow(row), true, nil
}

// Create inserts a team and returns its id. A concurrent insert of the same
// (league, abbreviation) surfaces as team.ErrAlreadyExists for the caller to
// re-query.
func (r *TeamRepository) Create(ctx context.Context, t team.Team) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate team: %w", err)
	}

	query, args, err := qb.InsertModel("teams", teamInsertModel{
		LeagueCode:   t.LeagueCode,
		Abbreviation: t.Abbreviation,
		Name:         t.Name,
	}, `RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isUniqueViolation(err) {
			return 0, team.ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert team league=%s abbr=%s: %w", t.LeagueCode, t.Abbreviation, err)
	}

	return id, nil
}

func (r *TeamRepository) GetAlias(ctx context.Context, leagueCode, providerAbbr string) (int64, bool, error) {
	query, args, err := qb.Select("team_id").From("team_aliases").
		Where(
			qb.Eq("league_code", leagueCode),
			qb.Eq("provider_abbr", providerAbbr),
		).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build get team alias query: %w", err)
	}

	var teamID int64
	if err := r.db.GetContext(ctx, &teamID, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get team alias: %w", err)
	}

	return teamID, true, nil
}

func (r *TeamRepository) CreateAlias(ctx context.Context, a team.Alias) error {
	query, args, err := qb.InsertModel("team_aliases", teamAliasInsertModel{
		LeagueCode:   a.LeagueCode,
		ProviderAbbr: a.ProviderAbbr,
		TeamID:       a.TeamID,
	}, `ON CONFLICT (league_code, provider_abbr) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert team alias query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team alias league=%s abbr=%s: %w", a.LeagueCode, a.ProviderAbbr, err)
	}

	return nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:           row.ID,
		LeagueCode:   row.LeagueCode,
		Abbreviation: row.Abbreviation,
		Name:         row.Name,
	}
}
