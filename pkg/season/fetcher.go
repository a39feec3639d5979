// Package season drives offset pagination over the fixture listing for one
// season query. Pages are requested in strictly increasing offset order by
// a single sequential loop; a short page terminates the walk.
package season

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/footdata/harvester/pkg/client"
	"github.com/footdata/harvester/pkg/logging"
	"github.com/footdata/harvester/pkg/provider"
)

// Query is an immutable descriptor of one season fetch.
type Query struct {
	// Year is the season year, e.g. 2025 for the 2025-26 season.
	Year int

	// From and To bound the fixture kickoff dates (inclusive).
	From, To time.Time

	// Label is the human-readable name used in logs and reports.
	Label string
}

// Result is the complete record set for one query.
type Result struct {
	// Fixtures holds every record across all pages, in listing order.
	Fixtures []provider.Fixture

	// Duration is the wall-clock time of the full walk.
	Duration time.Duration

	// Requests is the number of page requests issued.
	Requests int
}

// Fetcher assembles complete fixture sets through the resilient client.
type Fetcher struct {
	client *client.Client
	logger zerolog.Logger

	// Progress, if set, is invoked after each page with the running page
	// and record counts. Advisory only.
	Progress func(pages, records int)
}

// NewFetcher creates a season fetcher on top of an existing client.
func NewFetcher(c *client.Client) *Fetcher {
	return &Fetcher{
		client: c,
		logger: logging.NewLogger("season-fetcher"),
	}
}

// FetchAll retrieves every fixture for the query. A page with fewer records
// than the page size is the last page. Any terminal page failure aborts the
// whole fetch and no partial record set is returned.
func (f *Fetcher) FetchAll(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	pageSize := f.client.PageSize()

	f.logger.Info().
		Int("year", q.Year).
		Str("label", q.Label).
		Int("page_size", pageSize).
		Msg("Starting season fetch")

	var result Result
	for offset := 0; ; offset += pageSize {
		var raw json.RawMessage
		if err := f.client.GetJSON(ctx, listPath(q, pageSize, offset), &raw); err != nil {
			return nil, fmt.Errorf("season %q page at offset %d: %w", q.Label, offset, err)
		}
		result.Requests++

		page, err := provider.DecodeFixtures(raw)
		if err != nil {
			return nil, fmt.Errorf("season %q page at offset %d: %w", q.Label, offset, err)
		}

		result.Fixtures = append(result.Fixtures, page...)
		if f.Progress != nil {
			f.Progress(result.Requests, len(result.Fixtures))
		}

		f.logger.Debug().
			Int("offset", offset).
			Int("page_records", len(page)).
			Int("total_records", len(result.Fixtures)).
			Msg("Page fetched")

		if len(page) < pageSize {
			break
		}
	}

	result.Duration = time.Since(start)

	f.logger.Info().
		Str("label", q.Label).
		Int("records", len(result.Fixtures)).
		Int("requests", result.Requests).
		Dur("duration", result.Duration).
		Msg("Season fetch complete")

	return &result, nil
}

// listPath builds the listing request path for one page.
func listPath(q Query, limit, offset int) string {
	params := url.Values{}
	params.Set("season", fmt.Sprintf("%d", q.Year))
	if !q.From.IsZero() {
		params.Set("from", q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.Format("2006-01-02"))
	}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))
	return "/fixtures?" + params.Encode()
}
