package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/footdata/harvester/pkg/client"
	"github.com/footdata/harvester/pkg/logging"
	"github.com/footdata/harvester/pkg/provider"
	"github.com/footdata/harvester/pkg/stats"
)

// ProgressFunc is invoked after each identifier with the completed and
// total counts. Advisory only; it never affects control flow.
type ProgressFunc func(completed, total int)

// Runner processes batches of match identifiers strictly sequentially
// through one resilient client.
type Runner struct {
	client *client.Client
	logger zerolog.Logger

	// Progress, if set, receives per-identifier progress.
	Progress ProgressFunc
}

// NewRunner creates a batch runner on top of an existing client.
func NewRunner(c *client.Client) *Runner {
	return &Runner{
		client: c,
		logger: logging.NewLogger("batch-runner"),
	}
}

// Run acquires and transforms statistics for every identifier, in the
// order supplied. A failing identifier, whether network-level or
// shape-level, is recorded and never stops the batch.
func (r *Runner) Run(ctx context.Context, matchIDs []string) RunReport {
	start := time.Now()
	report := RunReport{Total: len(matchIDs)}

	r.logger.Info().Int("total", len(matchIDs)).Msg("Starting batch run")

	for i, id := range matchIDs {
		record, err := r.fetchOne(ctx, id)
		if err != nil {
			r.logger.Warn().Str("match_id", id).Err(err).Msg("Match failed")
			report.Failed++
			report.Failures = append(report.Failures, Failure{MatchID: id, Message: err.Error()})
		} else {
			report.Succeeded++
			report.Matches = append(report.Matches, record)
		}

		if r.Progress != nil {
			r.Progress(i+1, len(matchIDs))
		}
	}

	report.Duration = time.Since(start)
	report.Aggregates = computeAggregates(report.Matches)

	r.logger.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("Batch run complete")

	return report
}

// fetchOne requests and transforms a single match's statistic pair.
func (r *Runner) fetchOne(ctx context.Context, matchID string) (stats.MatchStats, error) {
	var raw json.RawMessage
	if err := r.client.GetJSON(ctx, fmt.Sprintf("/fixtures/%s/statistics", matchID), &raw); err != nil {
		return stats.MatchStats{}, err
	}

	blocks, err := provider.DecodeTeamStats(raw)
	if err != nil {
		return stats.MatchStats{}, err
	}

	return stats.Transform(matchID, blocks)
}
