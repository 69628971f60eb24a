package player

import "fmt"

// Player is an athlete whose per-game statistics feed the analytics engine.
// ExternalRef is the provider-native identifier used for stable matching
// across runs; it may be empty for players only ever seen by name.
type Player struct {
	ID          int64
	Name        string
	ExternalRef string
	TeamID      int64
}

func (p Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
