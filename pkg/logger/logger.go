package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the root zerolog logger. It reads LOG_LEVEL and LOG_FORMAT
// directly so it can run before configuration is loaded and report config
// failures through the same logger.
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	// Human-readable console output, LOG_FORMAT=pretty
	if os.Getenv("LOG_FORMAT") == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Caller().
			Str("service", "zendesk-ingest").
			Logger()
	}

	// JSON output is the default
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "zendesk-ingest").
		Logger()
}
