package normalize

var skaterProps = map[string][]string{
	"goals":         {"goals", "g"},
	"assists":       {"assists", "a"},
	"points":        {"points", "pts"},
	"shots_on_goal": {"shots_on_goal", "sog", "shots"},
	"blocked_shots": {"blocked_shots", "blocks"},
}

var goalieProps = map[string][]string{
	"saves": {"saves", "sv"},
}

// Hockey normalizes a hockey boxscore payload. Goalies report saves only;
// the skater categories are absent from their entries and skipped naturally.
func Hockey(raw []byte) []StatLine {
	doc := decode(raw)
	if doc == nil {
		return nil
	}
	box := childMap(doc, "boxscore")
	if box == nil {
		box = doc
	}

	players := entries(box["skaters"])
	goalies := entries(box["goalies"])
	if len(players) == 0 && len(goalies) == 0 {
		players = entries(box["players"])
	}

	var out []StatLine
	out = appendHockeySection(out, players, skaterProps)
	out = appendHockeySection(out, goalies, goalieProps)
	return out
}

func appendHockeySection(out []StatLine, players []map[string]any, props map[string][]string) []StatLine {
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
