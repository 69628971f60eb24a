package matchup

import (
	"fmt"
	"time"
)

// Rank is a per-team percentile describing how generous that team has
// historically been against a prop type: 100 means opposing players
// accumulate more of the stat against this team than against any other.
type Rank struct {
	ID        int64
	TeamID    int64
	PropType  string
	Season    string
	RankPct   float64
	UpdatedAt time.Time
}

func (r Rank) Validate() error {
	if r.TeamID <= 0 {
		return fmt.Errorf("matchup rank team id is required")
	}
	if r.PropType == "" {
		return fmt.Errorf("matchup rank prop type is required")
	}
	if r.Season == "" {
		return fmt.Errorf("matchup rank season is required")
	}
	if r.RankPct < 0 || r.RankPct > 100 {
		return fmt.Errorf("matchup rank percentile out of range: %f", r.RankPct)
	}

	return nil
}
