package token

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores values in a PostgreSQL table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend ensures the settings table exists and takes ownership of pool.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	stmt := `
	CREATE TABLE IF NOT EXISTS client_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return nil, err
	}
	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM client_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key, value string) error {
	stmt := `
	INSERT INTO client_settings (key, value)
	VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET
		value = EXCLUDED.value,
		updated_at = NOW()`

	_, err := p.pool.Exec(ctx, stmt, key, value)
	return err
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM client_settings WHERE key = $1`, key)
	return err
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	var res int
	if err := p.pool.QueryRow(ctx, "SELECT 1").Scan(&res); err != nil {
		return err
	}
	if res != 1 {
		return errors.New("unexpected ping result")
	}
	return nil
}

func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}
