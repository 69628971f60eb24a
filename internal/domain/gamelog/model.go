package gamelog

import (
	"fmt"
	"time"
)

// Log is one player-game statistical observation for a single prop type.
// Hit is derived at construction time and never recomputed downstream.
type Log struct {
	ID             int64
	PlayerID       int64
	TeamID         int64
	GameID         int64
	OpponentTeamID int64
	PropType       string
	Line           float64
	ActualValue    float64
	Hit            bool
	GameDate       time.Time
	Season         string
}

// New builds a log row, deriving the hit flag from value versus line.
// A value exactly on the line counts as a hit.
func New(playerID, teamID, gameID, opponentTeamID int64, propType string, line, actual float64, gameDate time.Time, season string) Log {
	return Log{
		PlayerID:       playerID,
		TeamID:         teamID,
		GameID:         gameID,
		OpponentTeamID: opponentTeamID,
		PropType:       propType,
		Line:           line,
		ActualValue:    actual,
		Hit:            actual >= line,
		GameDate:       gameDate,
		Season:         season,
	}
}

func (l Log) Validate() error {
	if l.PlayerID <= 0 {
		return fmt.Errorf("log player id is required")
	}
	if l.GameID <= 0 {
		return fmt.Errorf("log game id is required")
	}
	if l.PropType == "" {
		return fmt.Errorf("log prop type is required")
	}

	return nil
}

// Combo identifies one analytics unit of work.
type Combo struct {
	PlayerID int64
	PropType string
	Season   string
}

// OpponentTotal aggregates how much of a stat category opposing players
// accumulated against one team, feeding the matchup percentile ranking.
type OpponentTotal struct {
	TeamID   int64
	PropType string
	Season   string
	AvgValue float64
	Games    int
}
