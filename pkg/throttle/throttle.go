// Package throttle enforces a minimum spacing between outbound provider
// requests. A token bucket with burst 1 means consecutive dispatches are
// at least 1/rate apart, which keeps the harvester under the provider's
// request ceiling regardless of how fast the driving loop runs.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// Prometheus metrics for throttle operations.
var (
	throttleDispatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_throttle_dispatches_total",
		Help: "Total dispatches released by the throttle",
	})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "harvester_throttle_wait_seconds",
		Help:    "Time spent waiting for the throttle to release a dispatch",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})
)

// Throttle gates outbound requests to a configured requests-per-second
// ceiling. It is owned by a single client instance and driven by one
// sequential loop; sharing one Throttle across clients is how callers
// opt into a combined global ceiling.
type Throttle struct {
	mu sync.Mutex

	limiter      *rate.Limiter
	rps          float64
	minInterval  time.Duration
	count        int64
	lastDispatch time.Time
}

// Stats is a snapshot of throttle counters for observability.
type Stats struct {
	// Count is the number of dispatches released so far.
	Count int64

	// RequestsPerSecond is the configured rate ceiling.
	RequestsPerSecond float64

	// MinInterval is the minimum spacing between dispatches.
	MinInterval time.Duration
}

// New creates a Throttle for the given requests-per-second ceiling.
func New(requestsPerSecond float64) (*Throttle, error) {
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive (got %v)", requestsPerSecond)
	}

	return &Throttle{
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		rps:         requestsPerSecond,
		minInterval: time.Duration(float64(time.Second) / requestsPerSecond),
	}, nil
}

// Wait blocks until the interval since the previous dispatch is at least
// the configured minimum, then records the dispatch. It cannot fail on its
// own; the only error source is context cancellation during the wait.
func (t *Throttle) Wait(ctx context.Context) error {
	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}
	throttleWaitSeconds.Observe(time.Since(start).Seconds())

	t.mu.Lock()
	t.count++
	t.lastDispatch = time.Now()
	t.mu.Unlock()

	throttleDispatchesTotal.Inc()
	return nil
}

// Stats returns a snapshot of the throttle counters.
func (t *Throttle) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Stats{
		Count:             t.count,
		RequestsPerSecond: t.rps,
		MinInterval:       t.minInterval,
	}
}

// LastDispatch returns the time of the most recent dispatch.
// Zero if nothing has been dispatched yet.
func (t *Throttle) LastDispatch() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastDispatch
}

// Reset zeroes the dispatch counter and last-dispatch time and restores a
// full token. Used between independent runs, not during normal operation.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.count = 0
	t.lastDispatch = time.Time{}
	t.limiter = rate.NewLimiter(rate.Limit(t.rps), 1)
}
