package main

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("HARVESTER_TEST_KEY", "from-env")

	if got := getEnv("HARVESTER_TEST_KEY", "fallback"); got != "from-env" {
		t.Errorf("getEnv = %q, want %q", got, "from-env")
	}
	if got := getEnv("HARVESTER_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want %q", got, "fallback")
	}
}

func TestBuildClient_RequiresBaseURL(t *testing.T) {
	flagBaseURL = ""
	if _, err := buildClient(); err == nil {
		t.Error("buildClient should fail without a base URL")
	}
}

func TestBuildClient_FromFlags(t *testing.T) {
	flagBaseURL = "http://localhost:9999"
	flagRPS = 5
	flagRetries = 2
	flagBaseDelay = 100 * time.Millisecond
	flagMaxDelay = time.Second
	flagPageSize = 25
	flagRedisAddr = ""

	c, err := buildClient()
	if err != nil {
		t.Fatalf("buildClient failed: %v", err)
	}
	if c.PageSize() != 25 {
		t.Errorf("PageSize() = %d, want 25", c.PageSize())
	}
}
