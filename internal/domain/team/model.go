package team

import "fmt"

// Team is a club or franchise inside a league, identified by its canonical
// abbreviation.
type Team struct {
	ID           int64
	LeagueCode   string
	Abbreviation string
	Name         string
}

func (t Team) Validate() error {
	if t.LeagueCode == "" {
		return fmt.Errorf("team league code is required")
	}
	if t.Abbreviation == "" {
		return fmt.Errorf("team abbreviation is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// Alias maps a provider's abbreviation for a team onto the canonical row.
// Rows are created lazily the first time a provider abbreviation resolves,
// so later sightings hit a single indexed lookup.
type Alias struct {
	LeagueCode   string
	ProviderAbbr string
	TeamID       int64
}
