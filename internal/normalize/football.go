package normalize

var footballProps = map[string][]string{
	"passing_yards":   {"passing_yards", "pass_yds"},
	"rushing_yards":   {"rushing_yards", "rush_yds"},
	"receiving_yards": {"receiving_yards", "rec_yds"},
	"receptions":      {"receptions", "rec"},
	"passing_tds":     {"passing_tds", "pass_td"},
	"rushing_tds":     {"rushing_tds", "rush_td"},
}

// Football normalizes a football boxscore payload. Players arrive grouped
// under their team entry, so the team abbreviation lives one level up.
func Football(raw []byte) []StatLine {
	doc := decode(raw)
	if doc == nil {
		return nil
	}

	teams := entries(doc["teams"])
	if len(teams) == 0 {
		teams = entries(childMap(doc, "boxscore")["teams"])
	}

	var out []StatLine
	for _, teamEntry := range teams {
		teamAbbr := getString(teamEntry, "abbr", "abbreviation", "team")
		if teamAbbr == "" {
			continue
		}

		for _, entry := range entries(teamEntry["players"]) {
			ref := getString(entry, "id", "player_id")
			name := getString(entry, "name", "display_name")
			if ref == "" && name == "" {
				continue
			}

			stats := childMap(entry, "stats")
			if stats == nil {
				stats = entry
			}
			for propType, keys := range footballProps {
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
	}

	return out
}
