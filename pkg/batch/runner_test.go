package batch

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/footdata/harvester/internal/testutil"
	"github.com/footdata/harvester/pkg/client"
)

func testRunner(t *testing.T, baseURL string) *Runner {
	t.Helper()
	cfg := client.DefaultConfig(baseURL)
	cfg.RequestsPerSecond = 500
	cfg.Retry = client.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return NewRunner(c)
}

func TestRun_AllSucceed(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetStatistics("m1", testutil.TwoTeamStats(10, 5))
	mock.SetStatistics("m2", testutil.TwoTeamStats(8, 12))

	report := testRunner(t, mock.URL()).Run(context.Background(), []string{"m1", "m2"})

	if report.Total != 2 || report.Succeeded != 2 || report.Failed != 0 {
		t.Errorf("report = %s", report.Summary())
	}
	if len(report.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(report.Matches))
	}
	if report.Matches[0].MatchID != "m1" || report.Matches[1].MatchID != "m2" {
		t.Errorf("match order = %q, %q", report.Matches[0].MatchID, report.Matches[1].MatchID)
	}
	if report.Duration <= 0 {
		t.Error("duration should be positive")
	}
}

func TestRun_PartialFailureContinues(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetStatistics("m1", testutil.TwoTeamStats(10, 5))
	// m2 returns a single-entry array: a shape failure, not retried endlessly
	mock.SetStatistics("m2", `[{"team_id": 1, "team_name": "Lonely FC", "statistics": []}]`)
	mock.SetStatistics("m3", testutil.TwoTeamStats(3, 3))

	report := testRunner(t, mock.URL()).Run(context.Background(), []string{"m1", "m2", "m3"})

	if report.Total != 3 {
		t.Errorf("Total = %d, want 3", report.Total)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 2/1", report.Succeeded, report.Failed)
	}
	if got := report.Succeeded + report.Failed; got != report.Total {
		t.Errorf("succeeded+failed = %d, want Total = %d", got, report.Total)
	}

	if len(report.Matches) != 2 ||
		report.Matches[0].MatchID != "m1" || report.Matches[1].MatchID != "m3" {
		t.Errorf("successes = %+v, want m1 and m3", report.Matches)
	}

	if len(report.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(report.Failures))
	}
	if report.Failures[0].MatchID != "m2" {
		t.Errorf("failure id = %q, want m2", report.Failures[0].MatchID)
	}
	if !strings.Contains(report.Failures[0].Message, "2") {
		t.Errorf("failure message %q should name the expected pair size", report.Failures[0].Message)
	}
}

func TestRun_NetworkFailureRecorded(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetStatistics("m1", testutil.TwoTeamStats(10, 5))
	mock.SetResponse("/fixtures/m2/statistics", testutil.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "upstream down"}`,
	})

	report := testRunner(t, mock.URL()).Run(context.Background(), []string{"m1", "m2"})

	if report.Succeeded != 1 || report.Failed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 1/1", report.Succeeded, report.Failed)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	report := testRunner(t, mock.URL()).Run(context.Background(), nil)

	if report.Total != 0 || report.Succeeded != 0 || report.Failed != 0 {
		t.Errorf("report = %s, want all zero", report.Summary())
	}
	if report.Aggregates != (Aggregates{}) {
		t.Errorf("aggregates = %+v, want zero", report.Aggregates)
	}
}

func TestRun_ProgressReported(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetStatistics("m1", testutil.TwoTeamStats(1, 1))
	// m2 is unregistered and 404s; progress fires regardless of outcome

	r := testRunner(t, mock.URL())

	type call struct{ done, total int }
	var calls []call
	r.Progress = func(done, total int) {
		calls = append(calls, call{done, total})
	}

	r.Run(context.Background(), []string{"m1", "m2"})

	if len(calls) != 2 {
		t.Fatalf("progress calls = %d, want 2", len(calls))
	}
	if calls[0] != (call{1, 2}) || calls[1] != (call{2, 2}) {
		t.Errorf("progress calls = %+v, want [{1 2} {2 2}]", calls)
	}
}

func TestRun_AveragesOverSuccessesOnly(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetStatistics("m1", testutil.TwoTeamStats(10, 6)) // 16 shots
	mock.SetStatistics("m2", testutil.TwoTeamStats(4, 4))  // 8 shots
	// m3 404s and must not drag the average down

	report := testRunner(t, mock.URL()).Run(context.Background(), []string{"m1", "m2", "m3"})

	if report.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", report.Succeeded)
	}
	if report.Aggregates.AvgShotsTotal != 12 {
		t.Errorf("AvgShotsTotal = %v, want 12 (denominator is successes)", report.Aggregates.AvgShotsTotal)
	}
}

func TestComputeAggregates_Empty(t *testing.T) {
	if got := computeAggregates(nil); got != (Aggregates{}) {
		t.Errorf("computeAggregates(nil) = %+v, want zero", got)
	}
}

func TestRunReport_Summary(t *testing.T) {
	r := RunReport{Total: 3, Succeeded: 2, Failed: 1, Duration: 1500 * time.Millisecond}

	got := r.Summary()
	for _, want := range []string{"total=3", "succeeded=2", "failed=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
}
