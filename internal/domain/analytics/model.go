package analytics

import (
	"fmt"
	"time"
)

// PlayerProp is the enrichment engine's output row, one per
// (player, prop_type, season). Rolling fields are overwritten on every pass;
// pointer fields are optional and merged with the stored value on upsert so a
// transient lookup outage never erases previously known enrichment.
type PlayerProp struct {
	PlayerID      int64
	PropType      string
	Season        string
	HitRateL5     float64
	HitRateL10    float64
	HitRateL20    float64
	CurrentStreak int
	H2HAvg        *float64
	SeasonAvg     *float64
	MatchupRank   *float64
	EVPercent     *float64
	Sport         *string
	UpdatedAt     time.Time
}

func (p PlayerProp) Validate() error {
	if p.PlayerID <= 0 {
		return fmt.Errorf("analytics player id is required")
	}
	if p.PropType == "" {
		return fmt.Errorf("analytics prop type is required")
	}
	if p.Season == "" {
		return fmt.Errorf("analytics season is required")
	}
	for _, rate := range []float64{p.HitRateL5, p.HitRateL10, p.HitRateL20} {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("analytics hit rate out of range: %f", rate)
		}
	}

	return nil
}
