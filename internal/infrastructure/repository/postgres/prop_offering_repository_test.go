package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/prop-insights/internal/domain/propoffer"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return sqlx.NewDb(db, "postgres"), mock
}

func TestPropOfferingRepository_UpsertMany_KeepsBestPrice(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPropOfferingRepository(db)

	over := -115.0
	under := -105.0

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO prop_offerings.*ON CONFLICT \(league_code, game_external_ref, player_id, prop_type, line\).*over_odds = GREATEST\(COALESCE\(prop_offerings\.over_odds, EXCLUDED\.over_odds\), COALESCE\(EXCLUDED\.over_odds, prop_offerings\.over_odds\)\).*under_odds = GREATEST\(COALESCE\(prop_offerings\.under_odds, EXCLUDED\.under_odds\), COALESCE\(EXCLUDED\.under_odds, prop_offerings\.under_odds\)\)`).
		WithArgs("nba", "game-1", int64(7), "points", 25.5, over, under, propoffer.SourcePrimary).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO prop_offerings`).
		WithArgs("nba", "game-1", int64(7), "points", 25.5, nil, under, propoffer.SourceAggregator).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertMany(context.Background(), []propoffer.Offering{
		{
			LeagueCode:      "nba",
			GameExternalRef: "game-1",
			PlayerID:        7,
			PropType:        "points",
			Line:            25.5,
			OverOdds:        &over,
			UnderOdds:       &under,
			Source:          propoffer.SourcePrimary,
		},
		{
			LeagueCode:      "nba",
			GameExternalRef: "game-1",
			PlayerID:        7,
			PropType:        "points",
			Line:            25.5,
			UnderOdds:       &under,
			Source:          propoffer.SourceAggregator,
		},
	})
	if err != nil {
		t.Fatalf("upsert offerings: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPropOfferingRepository_UpsertMany_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPropOfferingRepository(db)

	if err := repo.UpsertMany(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert must be a noop: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestPropOfferingRepository_UpsertMany_RejectsInvalidQuote(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPropOfferingRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.UpsertMany(context.Background(), []propoffer.Offering{
		{LeagueCode: "nba", PlayerID: 7, PropType: "points"},
	})
	if err == nil {
		t.Fatal("expected validation error for a quote without a source")
	}
}

func TestPropOfferingRepository_GetLatest(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPropOfferingRepository(db)

	updatedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "league_code", "game_external_ref", "player_id", "prop_type",
		"line", "over_odds", "under_odds", "source", "updated_at", "created_at",
	}).AddRow(int64(3), "nba", "game-1", int64(7), "points", 25.5, -115.0, nil, propoffer.SourcePrimary, updatedAt, updatedAt)

	mock.ExpectQuery(`SELECT \* FROM prop_offerings WHERE`).
		WithArgs(int64(7), "points", propoffer.SourcePrimary).
		WillReturnRows(rows)

	offering, ok, err := repo.GetLatest(context.Background(), 7, "points", propoffer.SourcePrimary)
	if err != nil {
		t.Fatalf("get latest offering: %v", err)
	}
	if !ok {
		t.Fatal("expected a stored offering")
	}
	if offering.Line != 25.5 || offering.Source != propoffer.SourcePrimary {
		t.Fatalf("unexpected offering %+v", offering)
	}
	if offering.OverOdds == nil || *offering.OverOdds != -115 {
		t.Fatalf("expected over odds -115, got %v", offering.OverOdds)
	}
	if offering.UnderOdds != nil {
		t.Fatalf("expected nil under odds, got %v", *offering.UnderOdds)
	}
}

func TestPropOfferingRepository_GetLatest_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPropOfferingRepository(db)

	mock.ExpectQuery(`SELECT \* FROM prop_offerings WHERE`).
		WithArgs(int64(7), "points", propoffer.SourcePrimary).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, ok, err := repo.GetLatest(context.Background(), 7, "points", propoffer.SourcePrimary)
	if err != nil {
		t.Fatalf("missing offering must not error: %v", err)
	}
	if ok {
		t.Fatal("expected no offering")
	}
}
