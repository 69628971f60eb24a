package normalize

import "strings"

// StatLine is one statistical observation extracted from a raw boxscore:
// who, for which team, which prop category, and how much. Line is only set
// when the provider payload itself carries one, which most do not; the
// ingestion coordinator resolves market lines separately.
type StatLine struct {
	PlayerExternalRef string
	PlayerName        string
	TeamAbbr          string
	PropType          string
	Line              *float64
	Value             float64
}

// Normalizer maps a provider's raw boxscore payload into stat lines. It must
// be pure and total: malformed or missing substructure skips the entry and
// never produces an error or panic.
type Normalizer func(raw []byte) []StatLine

var registry = map[string]Normalizer{
	"nba":  Basketball,
	"wnba": Basketball,
	"nfl":  Football,
	"mlb":  Baseball,
	"nhl":  Hockey,
}

// ForLeague returns the normalizer registered for a league code.
func ForLeague(leagueCode string) (Normalizer, bool) {
	n, ok := registry[strings.ToLower(strings.TrimSpace(leagueCode))]
	return n, ok
}

// Leagues lists the league codes with a registered normalizer.
func Leagues() []string {
	out := make([]string, 0, len(registry))
	for code := range registry {
		out = append(out, code)
	}
	return out
}
