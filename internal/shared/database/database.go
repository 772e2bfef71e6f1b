package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPgxPool creates a small PostgreSQL connection pool for client-side settings storage.
// The client issues a handful of statements per session, so the pool stays tiny:
// max 2 connections, none kept warm, 30-min lifetime, 5-min idle timeout.
func NewPgxPool(ctx context.Context, databaseURL string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger.Debug().Msg("Initializing database connection pool")

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse database URL")
		return nil, err
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = time.Minute * 30
	config.MaxConnIdleTime = time.Minute * 5

	logger.Debug().
		Str("host", config.ConnConfig.Host).
		Int32("max_conns", config.MaxConns).
		Int32("min_conns", config.MinConns).
		Dur("max_conns_lifetime", config.MaxConnLifetime).
		Dur("max_conns_idletime", config.MaxConnIdleTime).
		Msg("Database connection pool configuration")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create database connection pool")
		return nil, err
	}

	logger.Debug().Msg("Database connection pool created successfully")
	return pool, nil
}
