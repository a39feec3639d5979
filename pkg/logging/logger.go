// Package logging configures zerolog for the harvester. Every pipeline
// component logs through the global logger set up here: JSON to stderr by
// default, a console writer when pretty output is requested.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity. Values follow zerolog's level names;
// "warning" is accepted as an alias and unknown values fall back to info.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum severity to emit.
	Level LogLevel

	// Pretty switches from JSON to a human-readable console writer.
	Pretty bool

	// Output receives the log stream; nil means os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration used when nothing is specified:
// info-level JSON on stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup applies cfg to the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger
}

// parseLevel maps a LogLevel onto zerolog's scale, defaulting to info.
func parseLevel(level LogLevel) zerolog.Level {
	s := strings.ToLower(string(level))
	if s == "warning" {
		s = string(LevelWarn)
	}
	parsed, err := zerolog.ParseLevel(s)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// NewLogger returns a child of the global logger tagged with the pipeline
// component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Context Fields:
//   - component: pipeline stage (provider-client, season-fetcher, batch-runner)
//   - url / offset: provider request being executed
//   - match_id: identifier currently processed by a batch run
//   - status / error_class: HTTP outcome classification
//   - attempt / backoff: retry progression
//   - duration: run or request wall-clock time
