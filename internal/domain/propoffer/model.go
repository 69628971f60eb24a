package propoffer

import (
	"fmt"
	"time"
)

// Known quote sources, in the order the analytics engine consults them.
const (
	SourcePrimary    = "primary"
	SourceAggregator = "aggregator"
)

// Offering is a market quote for one (player, game, prop_type, line) tuple,
// already aggregated to the best over/under price seen across books for its
// source. Odds are American; a nil side means no book quoted it.
type Offering struct {
	ID              int64
	LeagueCode      string
	GameExternalRef string
	PlayerID        int64
	PropType        string
	Line            float64
	OverOdds        *float64
	UnderOdds       *float64
	Source          string
	UpdatedAt       time.Time
}

func (o Offering) Validate() error {
	if o.LeagueCode == "" {
		return fmt.Errorf("offering league code is required")
	}
	if o.PlayerID <= 0 {
		return fmt.Errorf("offering player id is required")
	}
	if o.PropType == "" {
		return fmt.Errorf("offering prop type is required")
	}
	if o.Source == "" {
		return fmt.Errorf("offering source is required")
	}

	return nil
}
