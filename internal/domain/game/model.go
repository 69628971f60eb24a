package game

import (
	"fmt"
	"time"
)

// Game is a single contest between two teams. ExternalRef is the provider's
// game identifier and doubles as the ingestion idempotency key.
type Game struct {
	ID          int64
	LeagueCode  string
	ExternalRef string
	HomeTeamID  int64
	AwayTeamID  int64
	GameDate    time.Time
	Season      string
}

func (g Game) Validate() error {
	if g.LeagueCode == "" {
		return fmt.Errorf("game league code is required")
	}
	if g.ExternalRef == "" {
		return fmt.Errorf("game external ref is required")
	}
	if g.HomeTeamID <= 0 || g.AwayTeamID <= 0 {
		return fmt.Errorf("game team ids are required")
	}
	if g.GameDate.IsZero() {
		return fmt.Errorf("game date is required")
	}
	if g.Season == "" {
		return fmt.Errorf("game season is required")
	}

	return nil
}
