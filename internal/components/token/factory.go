package token

import (
	"context"
	"fmt"
	"time"

	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/andrasnagy-data/learning-center/internal/shared/database"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const openTimeout = 10 * time.Second

// NewBackend returns the durable backend selected by TOKEN_STORE.
func NewBackend(cfg *config.Config, logger zerolog.Logger) (Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	logger = logger.With().Str("component", "token").Str("driver", cfg.TokenStore).Logger()

	switch cfg.TokenStore {
	case config.TokenStoreSQLite, "":
		logger.Debug().Str("path", cfg.SQLitePath).Msg("Opening SQLite token store")
		return NewSQLiteBackend(ctx, cfg.SQLitePath)

	case config.TokenStorePostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		backend, err := NewPostgresBackend(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("prepare token table: %w", err)
		}
		return backend, nil

	case config.TokenStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		logger.Debug().Str("addr", opts.Addr).Msg("Opening redis token store")
		return NewRedisBackend(redis.NewClient(opts), cfg.TokenKeyPrefix), nil

	case config.TokenStoreMemory:
		logger.Warn().Msg("Token store is in-memory; sign-in will not survive a restart")
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("unsupported token store: %s", cfg.TokenStore)
	}
}
