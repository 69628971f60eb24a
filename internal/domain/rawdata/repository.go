package rawdata

import "context"

// Repository stores audit payloads, upserting on (source, entity_type,
// entity_key) so re-ingestion refreshes rather than duplicates.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
