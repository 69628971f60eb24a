package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/gamelog"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type GameLogRepository struct {
	db *sqlx.DB
}

func NewGameLogRepository(db *sqlx.DB) *GameLogRepository {
	return &GameLogRepository{db: db}
}

// InsertMany writes observations in one transaction with insert-or-ignore
// semantics on (player_id, game_id, prop_type); a re-run of the same game
// leaves existing rows untouched.
func (r *GameLogRepository) InsertMany(ctx context.Context, logs []gamelog.Log) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx insert game logs: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range logs {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("validate game log: %w", err)
		}

		query, args, err := qb.InsertModel("player_game_logs", gameLogInsertModel{
			PlayerID:       l.PlayerID,
			TeamID:         l.TeamID,
			GameID:         l.GameID,
			OpponentTeamID: l.OpponentTeamID,
			PropType:       l.PropType,
			Line:           l.Line,
			ActualValue:    l.ActualValue,
			Hit:            l.Hit,
			GameDate:       l.GameDate,
			Season:         l.Season,
		}, `ON CONFLICT (player_id, game_id, prop_type) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("build insert game log query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert game log player=%d game=%d prop=%s: %w", l.PlayerID, l.GameID, l.PropType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert game logs tx: %w", err)
	}

	return nil
}

func (r *GameLogRepository) ListRecent(ctx context.Context, playerID int64, propType, season string, limit int) ([]gamelog.Log, error) {
	query, args, err := qb.Select("*").From("player_game_logs").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("prop_type", propType),
			qb.Eq("season", season),
		).
		OrderBy("game_date DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select recent game logs query: %w", err)
	}

	var rows []gameLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select recent game logs: %w", err)
	}

	out := make([]gamelog.Log, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamelog.Log{
			ID:             row.ID,
			PlayerID:       row.PlayerID,
			TeamID:         row.TeamID,
			GameID:         row.GameID,
			OpponentTeamID: row.OpponentTeamID,
			PropType:       row.PropType,
			Line:           row.Line,
			ActualValue:    row.ActualValue,
			Hit:            row.Hit,
			GameDate:       row.GameDate,
			Season:         row.Season,
		})
	}

	return out, nil
}

// ListCombos pages the distinct analytics work units in a stable order.
func (r *GameLogRepository) ListCombos(ctx context.Context, limit, offset int) ([]gamelog.Combo, error) {
	query, args, err := qb.Select("DISTINCT player_id", "prop_type", "season").From("player_game_logs").
		OrderBy("player_id", "prop_type", "season").
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select combos query: %w", err)
	}

	var rows []comboRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select combos: %w", err)
	}

	out := make([]gamelog.Combo, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamelog.Combo{
			PlayerID: row.PlayerID,
			PropType: row.PropType,
			Season:   row.Season,
		})
	}

	return out, nil
}

// ListOpponentTotals aggregates how much of each stat category opposing
// players accumulated against every team in a season.
func (r *GameLogRepository) ListOpponentTotals(ctx context.Context, season string) ([]gamelog.OpponentTotal, error) {
	query, args, err := qb.Select(
		"opponent_team_id",
		"prop_type",
		"season",
		"AVG(actual_value) AS avg_value",
		"COUNT(DISTINCT game_id) AS games",
	).From("player_game_logs").
		Where(
			qb.Eq("season", season),
			qb.Expr("opponent_team_id > 0"),
		).
		GroupBy("opponent_team_id", "prop_type", "season").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select opponent totals query: %w", err)
	}

	var rows []opponentTotalRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select opponent totals: %w", err)
	}

	out := make([]gamelog.OpponentTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamelog.OpponentTotal{
			TeamID:   row.TeamID,
			PropType: row.PropType,
			Season:   row.Season,
			AvgValue: row.AvgValue,
			Games:    row.Games,
		})
	}

	return out, nil
}
