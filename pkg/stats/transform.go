package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/footdata/harvester/pkg/provider"
)

// Statistic names as published by the provider.
const (
	statPossession    = "Ball Possession"
	statShotsTotal    = "Total Shots"
	statShotsOnTarget = "Shots on Goal"
	statCorners       = "Corner Kicks"
	statFouls         = "Fouls"
	statOffsides      = "Offsides"
	statYellowCards   = "Yellow Cards"
	statRedCards      = "Red Cards"
	statSaves         = "Goalkeeper Saves"
	statPassesTotal   = "Total Passes"
	statPassAccuracy  = "Passes %"
)

// Transform converts the two primary team statistic blocks for matchID into
// a canonical MatchStats. Fixtures decided on penalties may carry a third
// synthetic shootout block; the first two blocks are always used and any
// extras are logged, never an error. Fewer than two blocks cannot form a
// pair and is a hard failure.
func Transform(matchID string, blocks []provider.TeamStats) (MatchStats, error) {
	if len(blocks) < 2 {
		return MatchStats{}, fmt.Errorf("match %s: expected 2 team statistic blocks, got %d", matchID, len(blocks))
	}
	if len(blocks) > 2 {
		log.Debug().
			Str("match_id", matchID).
			Int("blocks", len(blocks)).
			Msg("Extra statistic blocks present (shootout), using first two")
	}

	return MatchStats{
		MatchID: matchID,
		Home:    teamLine(blocks[0]),
		Away:    teamLine(blocks[1]),
	}, nil
}

// teamLine projects one raw block onto the fixed schema.
func teamLine(block provider.TeamStats) TeamLine {
	return TeamLine{
		TeamID:        block.TeamID,
		TeamName:      block.TeamName,
		Possession:    floatStat(block, statPossession),
		ShotsTotal:    intStat(block, statShotsTotal),
		ShotsOnTarget: intStat(block, statShotsOnTarget),
		Corners:       intStat(block, statCorners),
		Fouls:         intStat(block, statFouls),
		Offsides:      intStat(block, statOffsides),
		YellowCards:   intStat(block, statYellowCards),
		RedCards:      intStat(block, statRedCards),
		Saves:         intStat(block, statSaves),
		PassesTotal:   intStat(block, statPassesTotal),
		PassAccuracy:  floatStat(block, statPassAccuracy),
	}
}

func intStat(block provider.TeamStats, name string) int {
	v, ok := extractValue(block.Stat(name))
	if !ok {
		return 0
	}
	return int(v)
}

func floatStat(block provider.TeamStats, name string) float64 {
	v, ok := extractValue(block.Stat(name))
	if !ok {
		return 0
	}
	return v
}

// extractValue normalizes a raw statistic value. The provider mixes plain
// numbers, numeric strings, and percent strings ("61%"); null and anything
// unparsable yield ok=false, which the schema maps to 0.
func extractValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
