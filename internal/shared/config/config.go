package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Token store drivers
const (
	TokenStoreSQLite   = "sqlite"
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
	TokenStoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Version     string `env:"VERSION" envDefault:"0.1.0"`
	Host        string `env:"HOST" envDefault:"127.0.0.1"`
	Port        int    `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN   string `env:"SENTRY_DSN"`

	// Remote authority
	ServerBasePath string        `env:"SERVER_BASE_PATH,notEmpty"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	HTTPRetries    uint64        `env:"HTTP_RETRIES" envDefault:"2"`

	// Token persistence
	TokenStore     string `env:"TOKEN_STORE" envDefault:"sqlite"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"client.db"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL"`
	TokenKeyPrefix string `env:"TOKEN_KEY_PREFIX" envDefault:"learning-center:"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.ServerBasePath = strings.TrimRight(cfg.ServerBasePath, "/")
	return cfg, nil
}

func (c *Config) IsEnvProd() bool {
	if c.Environment == "prod" && c.SentryDSN != "" {
		return true
	}
	return false
}
