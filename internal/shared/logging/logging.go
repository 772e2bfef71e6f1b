package logging

import (
	"os"
	"time"

	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger creates a zerolog logger with pretty console output for development or JSON output for production.
// In production, error level events (failed sign-in/sign-up, token persistence errors) are also sent to Sentry.
// The returned Sentry writer is nil outside production.
func NewLogger(cfg *config.Config) (zerolog.Logger, *sentryzerolog.Writer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		// Default to info level if parsing fails
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsEnvProd() {
		return newConsoleLogger(cfg), nil
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.Version,
		AttachStacktrace: true,
		// Never ship request bodies: sign-in forms carry passwords
		SendDefaultPII: false,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Sentry, using console only")
		return newConsoleLogger(cfg), nil
	}

	sentryWriter, err := sentryzerolog.New(sentryzerolog.Config{
		Options: sentryzerolog.Options{
			Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
			WithBreadcrumbs: true,
			FlushTimeout:    3 * time.Second,
		},
	})

	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Sentry writer, using console only")
		return newConsoleLogger(cfg), nil
	}

	log.Info().Msg("Zerolog Sentry writer initialized")

	// Production: JSON output to stderr + Sentry writer
	multiWriter := zerolog.MultiLevelWriter(os.Stderr, sentryWriter)

	return zerolog.New(multiWriter).
		With().
		Timestamp().
		Caller().
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Logger(), sentryWriter
}

// newConsoleLogger writes human-readable lines to stderr, tagged like the production logger.
func newConsoleLogger(cfg *config.Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).
		With().
		Timestamp().
		Str("environment", cfg.Environment).
		Logger()
}
