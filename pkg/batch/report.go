// Package batch drives the client and transformer across a set of match
// identifiers and accumulates the run report.
package batch

import (
	"fmt"
	"time"

	"github.com/footdata/harvester/pkg/stats"
)

// Failure records one identifier that could not be acquired or transformed.
type Failure struct {
	MatchID string `json:"match_id"`
	Message string `json:"message"`
}

// Aggregates are derived metrics over successful records only; failed
// identifiers contribute nothing, and the denominator is the successful
// count.
type Aggregates struct {
	AvgShotsTotal    float64 `json:"avg_shots_total"`
	AvgShotsOnTarget float64 `json:"avg_shots_on_target"`
	AvgCorners       float64 `json:"avg_corners"`
	AvgCards         float64 `json:"avg_cards"`
}

// RunReport summarizes one batch run. Invariant: Succeeded + Failed ==
// Total, and every input identifier appears in exactly one of Matches or
// Failures.
type RunReport struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`

	// Matches holds successes in input order.
	Matches []stats.MatchStats `json:"matches"`

	// Failures holds failures in input order.
	Failures []Failure `json:"failures"`

	Aggregates Aggregates `json:"aggregates"`
}

// Summary returns a one-line human-readable summary.
func (r *RunReport) Summary() string {
	return fmt.Sprintf("total=%d succeeded=%d failed=%d dur=%s",
		r.Total, r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond))
}

// computeAggregates fills the per-match averages. Both teams of a match
// count toward the per-match totals.
func computeAggregates(matches []stats.MatchStats) Aggregates {
	if len(matches) == 0 {
		return Aggregates{}
	}

	var shots, onTarget, corners, cards int
	for _, m := range matches {
		shots += m.Home.ShotsTotal + m.Away.ShotsTotal
		onTarget += m.Home.ShotsOnTarget + m.Away.ShotsOnTarget
		corners += m.Home.Corners + m.Away.Corners
		cards += m.Home.YellowCards + m.Home.RedCards + m.Away.YellowCards + m.Away.RedCards
	}

	n := float64(len(matches))
	return Aggregates{
		AvgShotsTotal:    float64(shots) / n,
		AvgShotsOnTarget: float64(onTarget) / n,
		AvgCorners:       float64(corners) / n,
		AvgCards:         float64(cards) / n,
	}
}
