package rawdata

import "time"

// Payload is a verbatim provider response stored before normalization so a
// normalizer bug is recoverable without a re-fetch.
type Payload struct {
	Source          string
	EntityType      string
	EntityKey       string
	LeagueCode      string
	GameExternalRef string
	PayloadJSON     string
	PayloadHash     string
	IngestedAt      time.Time
}
