package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/footdata/harvester/internal/testutil"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig(baseURL)
	cfg.RequestsPerSecond = 200
	cfg.Retry = RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Millisecond,
		MaxDelay:    50 * time.Millisecond,
	}
	return cfg
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base URL", func(c *Config) { c.BaseURL = "" }},
		{"zero max attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("http://provider")
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGetJSON_DecodesResponse(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse("/fixtures/42/statistics", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.TwoTeamStats(12, 8),
	})

	c, err := New(testConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var blocks []map[string]any
	if err := c.GetJSON(context.Background(), "/fixtures/42/statistics", &blocks); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if len(blocks) != 2 {
		t.Errorf("decoded blocks = %d, want 2", len(blocks))
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want 1", mock.GetRequestCount())
	}
}

func TestGetJSON_RetriesTransientThenSucceeds(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.FailThenSucceed("/fixtures/7/statistics", http.StatusTooManyRequests, 2, testutil.TwoTeamStats(5, 5))

	cfg := testConfig(mock.URL())
	var attempts []int
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out []map[string]any
	if err := c.GetJSON(context.Background(), "/fixtures/7/statistics", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if mock.GetRequestCount() != 3 {
		t.Errorf("requests = %d, want 3 (2 failures + success)", mock.GetRequestCount())
	}
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("onRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestGetJSON_ExhaustsRetries(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse("/fixtures/7/statistics", testutil.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "upstream down"}`,
	})

	c, err := New(testConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out any
	err = c.GetJSON(context.Background(), "/fixtures/7/statistics", &out)

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("expected ErrRetryExhausted, got %v", err)
	}
	if mock.GetRequestCount() != 3 {
		t.Errorf("requests = %d, want 3 (MaxAttempts)", mock.GetRequestCount())
	}
}

func TestGetJSON_NotFoundNotRetried(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	// No handler registered: the mock answers 404

	c, err := New(testConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out any
	err = c.GetJSON(context.Background(), "/fixtures/missing/statistics", &out)

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Class != ErrorClassNotFound || pe.StatusCode != 404 {
		t.Errorf("error = %+v, want not_found/404", pe)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want 1 (permanent absence skips retries)", mock.GetRequestCount())
	}
}

func TestGetJSON_NetworkError(t *testing.T) {
	mock := testutil.NewMockProvider()
	url := mock.URL()
	mock.Close() // nothing listening anymore

	cfg := testConfig(url)
	cfg.Retry.MaxAttempts = 2
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out any
	err = c.GetJSON(context.Background(), "/fixtures", &out)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("network errors are transient, expected ErrRetryExhausted, got %v", err)
	}
}

func TestGetJSON_DecodeFailure(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse("/fixtures/1/statistics", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>maintenance</html>`,
	})

	c, err := New(testConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out []any
	if err := c.GetJSON(context.Background(), "/fixtures/1/statistics", &out); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestGetJSON_SendsHeaders(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	var gotUA, gotAccept string
	mock.SetHandler("/fixtures", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	})

	cfg := testConfig(mock.URL())
	cfg.UserAgent = "harvest-test/0.1"
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out []any
	if err := c.GetJSON(context.Background(), "/fixtures", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if gotUA != "harvest-test/0.1" {
		t.Errorf("User-Agent = %q, want harvest-test/0.1", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestStats_TracksDispatches(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse("/fixtures", testutil.MockResponse{StatusCode: http.StatusOK, Body: `[]`})

	c, err := New(testConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		var out []any
		if err := c.GetJSON(ctx, "/fixtures", &out); err != nil {
			t.Fatalf("GetJSON %d failed: %v", i, err)
		}
	}

	if got := c.Stats().Count; got != 3 {
		t.Errorf("throttle Count = %d, want 3", got)
	}
}
