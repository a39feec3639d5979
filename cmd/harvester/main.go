// Command harvester acquires football match statistics from the configured
// provider.
//
// Usage:
//
//	harvester batch m101 m102 m103
//	harvester season --year 2025 --from 2025-08-01 --to 2026-05-31
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/footdata/harvester/pkg/batch"
	"github.com/footdata/harvester/pkg/cache"
	"github.com/footdata/harvester/pkg/client"
	"github.com/footdata/harvester/pkg/logging"
	"github.com/footdata/harvester/pkg/season"
)

var (
	flagBaseURL    string
	flagRPS        float64
	flagRetries    int
	flagBaseDelay  time.Duration
	flagMaxDelay   time.Duration
	flagPageSize   int
	flagRedisAddr  string
	flagCacheTTL   time.Duration
	flagLogLevel   string
	flagPretty     bool
	flagOutputJSON bool
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "harvester",
		Short: "Match statistics harvester",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(flagLogLevel),
				Pretty: flagPretty,
				Output: os.Stderr,
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagBaseURL, "base-url", getEnv("PROVIDER_BASE_URL", ""), "Provider endpoint root")
	pf.Float64Var(&flagRPS, "rps", 3, "Outbound requests per second ceiling")
	pf.IntVar(&flagRetries, "max-retries", 3, "Maximum attempts per request")
	pf.DurationVar(&flagBaseDelay, "base-backoff", 500*time.Millisecond, "Base retry delay")
	pf.DurationVar(&flagMaxDelay, "max-backoff", 8*time.Second, "Retry delay ceiling")
	pf.IntVar(&flagPageSize, "page-size", 100, "Listing page size")
	pf.StringVar(&flagRedisAddr, "redis", getEnv("REDIS_URL", ""), "Redis address for response caching (empty = disabled)")
	pf.DurationVar(&flagCacheTTL, "cache-ttl", 10*time.Minute, "Response cache TTL")
	pf.StringVar(&flagLogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagPretty, "pretty", false, "Human-readable console logs")

	root.AddCommand(batchCmd())
	root.AddCommand(seasonCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// batch command
// --------------------------------------------------------------------------

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <match-id> [match-id...]",
		Short: "Fetch and normalize statistics for a batch of match IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			c, err := buildClient()
			if err != nil {
				return err
			}

			runner := batch.NewRunner(c)
			runner.Progress = func(done, total int) {
				fmt.Fprintf(os.Stderr, "\rprocessed %d/%d", done, total)
				if done == total {
					fmt.Fprintln(os.Stderr)
				}
			}

			report := runner.Run(ctx, args)
			fmt.Fprintf(os.Stderr, "%s\n", report.Summary())
			for _, f := range report.Failures {
				fmt.Fprintf(os.Stderr, "  failed %s: %s\n", f.MatchID, f.Message)
			}

			if flagOutputJSON {
				return json.NewEncoder(os.Stdout).Encode(report)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagOutputJSON, "json", false, "Write the full report as JSON to stdout")
	return cmd
}

// --------------------------------------------------------------------------
// season command
// --------------------------------------------------------------------------

func seasonCmd() *cobra.Command {
	var (
		year  int
		from  string
		to    string
		label string
	)
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Fetch the complete fixture listing for one season",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			c, err := buildClient()
			if err != nil {
				return err
			}

			q := season.Query{Year: year, Label: label}
			if q.Label == "" {
				q.Label = fmt.Sprintf("%d", year)
			}
			if from != "" {
				if q.From, err = time.Parse("2006-01-02", from); err != nil {
					return fmt.Errorf("parse --from: %w", err)
				}
			}
			if to != "" {
				if q.To, err = time.Parse("2006-01-02", to); err != nil {
					return fmt.Errorf("parse --to: %w", err)
				}
			}

			result, err := season.NewFetcher(c).FetchAll(ctx, q)
			if err != nil {
				return fmt.Errorf("season fetch failed: %w", err)
			}

			fmt.Fprintf(os.Stderr, "fetched %d fixtures in %d requests (%s)\n",
				len(result.Fixtures), result.Requests, result.Duration.Round(time.Millisecond))

			if flagOutputJSON {
				return json.NewEncoder(os.Stdout).Encode(result.Fixtures)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Season year")
	cmd.Flags().StringVar(&from, "from", "", "Kickoff date lower bound (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Kickoff date upper bound (YYYY-MM-DD)")
	cmd.Flags().StringVar(&label, "label", "", "Human-readable season label")
	cmd.Flags().BoolVar(&flagOutputJSON, "json", false, "Write fixtures as JSON to stdout")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// buildClient assembles the resilient client from flags, wiring the Redis
// response cache when an address is configured.
func buildClient() (*client.Client, error) {
	if flagBaseURL == "" {
		return nil, fmt.Errorf("--base-url or PROVIDER_BASE_URL is required")
	}

	cfg := client.DefaultConfig(flagBaseURL)
	cfg.RequestsPerSecond = flagRPS
	cfg.Retry = client.RetryPolicy{
		MaxAttempts: flagRetries,
		BaseDelay:   flagBaseDelay,
		MaxDelay:    flagMaxDelay,
	}
	cfg.PageSize = flagPageSize

	if flagRedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: flagRedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", flagRedisAddr, err)
		}
		cfg.Cache = cache.NewManager(redisClient)
		cfg.CacheTTL = flagCacheTTL
	}

	return client.New(cfg)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
