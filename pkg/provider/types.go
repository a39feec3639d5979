// Package provider defines the wire shapes returned by the statistics
// provider and validates them at the boundary, before anything reaches the
// transformer. Two response shapes exist: a fixture listing (array of
// fixture records) and a single-fixture statistics payload (array of team
// statistic blocks).
package provider

import (
	"encoding/json"
	"fmt"
	"time"
)

// Fixture is one record from the listing endpoint.
type Fixture struct {
	ID       int       `json:"id"`
	Season   int       `json:"season"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Kickoff  time.Time `json:"kickoff"`
	Status   string    `json:"status"`
}

// StatEntry is one named statistic for a team. Values arrive as numbers,
// numeric strings, percent strings, or null depending on the statistic;
// they stay raw until the transformer normalizes them.
type StatEntry struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// TeamStats is the keyed statistic collection for one participant of a
// fixture. Read-only once received.
type TeamStats struct {
	TeamID     int         `json:"team_id"`
	TeamName   string      `json:"team_name"`
	Statistics []StatEntry `json:"statistics"`
}

// Stat returns the raw value for a statistic name, nil if absent.
func (t TeamStats) Stat(name string) json.RawMessage {
	for _, s := range t.Statistics {
		if s.Type == name {
			return s.Value
		}
	}
	return nil
}

// DecodeFixtures decodes and validates a listing response body.
func DecodeFixtures(body []byte) ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.Unmarshal(body, &fixtures); err != nil {
		return nil, fmt.Errorf("decode fixture listing: %w", err)
	}
	for i, f := range fixtures {
		if f.ID == 0 {
			return nil, fmt.Errorf("fixture listing entry %d has no id", i)
		}
	}
	return fixtures, nil
}

// DecodeTeamStats decodes and validates a single-fixture statistics body.
// Shape problems are rejected here; the participant-count rule belongs to
// the transformer.
func DecodeTeamStats(body []byte) ([]TeamStats, error) {
	var blocks []TeamStats
	if err := json.Unmarshal(body, &blocks); err != nil {
		return nil, fmt.Errorf("decode team statistics: %w", err)
	}
	for i, b := range blocks {
		if b.TeamID == 0 && b.TeamName == "" {
			return nil, fmt.Errorf("statistics block %d has no team identity", i)
		}
	}
	return blocks, nil
}
