package normalize

// Basketball stat categories tracked as props.
var basketballProps = map[string][]string{
	"points":   {"points", "pts"},
	"rebounds": {"rebounds", "reb", "total_rebounds"},
	"assists":  {"assists", "ast"},
	"threes":   {"threes", "three_pointers_made", "fg3m"},
	"steals":   {"steals", "stl"},
	"blocks":   {"blocks", "blk"},
}

// Basketball normalizes a basketball boxscore payload. The provider ships
// player entries either as an array or keyed by player id; both shapes list
// stats in a nested object under "stats" or inline on the entry.
func Basketball(raw []byte) []StatLine {
	doc := decode(raw)
	if doc == nil {
		return nil
	}

	players := entries(doc["players"])
	if len(players) == 0 {
		players = entries(childMap(doc, "boxscore")["players"])
	}

	out := make([]StatLine, 0, len(players)*4)
	for _, entry := range players {
		ref := getString(entry, "id", "player_id", "playerId")
		name := getString(entry, "name", "display_name", "full_name")
		teamAbbr := getString(entry, "team", "team_abbr", "teamAbbreviation")
		if (ref == "" && name == "") || teamAbbr == "" {
			continue
		}

		stats := childMap(entry, "stats")
		if stats == nil {
			stats = entry
		}
		for propType, keys := range basketballProps {
			value, ok := getFloat(stats, keys...)
			if !ok {
				continue
			}
			out = append(out, StatLine{
				PlayerExternalRef: ref,
				PlayerName:        name,
				TeamAbbr:          teamAbbr,
				PropType:          propType,
				Value:             value,
			})
		}
	}

	return out
}
