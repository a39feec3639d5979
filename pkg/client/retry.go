package client

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_retries_total",
		Help: "Total number of retry attempts",
	})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "harvester_retry_backoff_seconds",
		Help:    "Backoff duration applied between retry attempts",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted",
	})
)

// RetryObserver is invoked before each retry with the upcoming attempt
// number (1-based count of failures so far) and the error that triggered
// it. It must not panic; its return value is ignored.
type RetryObserver func(attempt int, err error)

// RetryPolicy holds bounded-retry configuration. Immutable after
// construction; the delay before re-attempting after failure k (0-indexed)
// is min(MaxDelay, BaseDelay * 2^k).
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the exponential delay growth.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Delay returns the backoff applied after failed attempt k (0-indexed).
// Shifts that would overflow or exceed the ceiling return MaxDelay, checked
// before shifting so the result can never wrap.
func (p RetryPolicy) Delay(k int) time.Duration {
	if k >= 62 || p.BaseDelay > p.MaxDelay>>uint(k) {
		return p.MaxDelay
	}
	return p.BaseDelay << uint(k)
}

// Do executes op up to MaxAttempts times with exponential backoff between
// failures. A success at any attempt returns immediately. An error marked
// permanent by IsRetryable is returned without further attempts. The final
// attempt's error is propagated wrapped in ErrRetryExhausted.
func (p RetryPolicy) Do(ctx context.Context, op func() error, onRetry RetryObserver) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 0 {
				log.Info().
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		delay := p.Delay(attempt)
		retriesTotal.Inc()
		retryBackoffSeconds.Observe(delay.Seconds())

		log.Debug().
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Err(err).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			log.Warn().
				Int("attempt", attempt+1).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(delay):
		}
	}

	retryExhaustedTotal.Inc()
	log.Warn().
		Int("max_attempts", p.MaxAttempts).
		Err(lastErr).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, p.MaxAttempts, lastErr)
}
