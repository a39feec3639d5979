// Package stats normalizes raw provider statistics into the canonical
// fixed-schema match record used by downstream reporting.
package stats

// TeamLine is the canonical per-team statistic line. Every field defaults
// to zero when the source statistic is absent or unparsable; fields are
// never omitted.
type TeamLine struct {
	TeamID        int     `json:"team_id"`
	TeamName      string  `json:"team_name"`
	Possession    float64 `json:"possession"`
	ShotsTotal    int     `json:"shots_total"`
	ShotsOnTarget int     `json:"shots_on_target"`
	Corners       int     `json:"corners"`
	Fouls         int     `json:"fouls"`
	Offsides      int     `json:"offsides"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
	Saves         int     `json:"saves"`
	PassesTotal   int     `json:"passes_total"`
	PassAccuracy  float64 `json:"pass_accuracy"`
}

// MatchStats is the canonical projection of one fixture's two team
// statistic blocks, keyed by the match identifier.
type MatchStats struct {
	MatchID string   `json:"match_id"`
	Home    TeamLine `json:"home"`
	Away    TeamLine `json:"away"`
}
