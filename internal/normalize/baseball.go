package normalize

var batterProps = map[string][]string{
	"hits":       {"hits", "h"},
	"total_bases": {"total_bases", "tb"},
	"runs":       {"runs", "r"},
	"rbis":       {"rbis", "rbi"},
	"home_runs":  {"home_runs", "hr"},
}

var pitcherProps = map[string][]string{
	"strikeouts":   {"strikeouts", "so", "k"},
	"outs_recorded": {"outs_recorded", "outs"},
	"earned_runs":  {"earned_runs", "er"},
}

// Baseball normalizes a baseball boxscore payload. Batters and pitchers are
// separate sections with disjoint stat categories.
func Baseball(raw []byte) []StatLine {
	doc := decode(raw)
	if doc == nil {
		return nil
	}
	box := childMap(doc, "boxscore")
	if box == nil {
		box = doc
	}

	var out []StatLine
	out = appendBaseballSection(out, entries(box["batters"]), batterProps)
	out = appendBaseballSection(out, entries(box["pitchers"]), pitcherProps)
	return out
}

func appendBaseballSection(out []StatLine, players []map[string]any, props map[string][]string) []StatLine {
	for _, entry := range players {
		ref := getString(entry, "id", "player_id")
		name := getString(entry, "name", "display_name")
		teamAbbr := getString(entry, "team", "team_abbr")
		if (ref == "" && name == "") || teamAbbr == "" {
			continue
		}

		stats := childMap(entry, "stats")
		if stats == nil {
			stats = entry
		}
		for propType, keys := range props {
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
