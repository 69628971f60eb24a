package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-insights/internal/domain/rawdata"
	qb "github.com/riskibarqy/prop-insights/internal/platform/querybuilder"
)

type RawPayloadRepository struct {
	db *sqlx.DB
}

func NewRawPayloadRepository(db *sqlx.DB) *RawPayloadRepository {
	return &RawPayloadRepository{db: db}
}

func (r *RawPayloadRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		query, args, err := qb.InsertModel("raw_payloads", rawPayloadInsertModel{
			Source:          item.Source,
			EntityType:      item.EntityType,
			EntityKey:       item.EntityKey,
			LeagueCode:      nullableString(item.LeagueCode),
			GameExternalRef: nullableString(item.GameExternalRef),
			Payload:         item.PayloadJSON,
			PayloadHash:     item.PayloadHash,
		}, `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    league_code = EXCLUDED.league_code,
    game_external_ref = EXCLUDED.game_external_ref,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    ingested_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert raw payload query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw payload entity=%s key=%s: %w", item.EntityType, item.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}

	return nil
}

type rawPayloadInsertModel struct {
	Source          string  `db:"source"`
	EntityType      string  `db:"entity_type"`
	EntityKey       string  `db:"entity_key"`
	LeagueCode      *string `db:"league_code"`
	GameExternalRef *string `db:"game_external_ref"`
	Payload         string  `db:"payload"`
	PayloadHash     string  `db:"payload_hash"`
}
