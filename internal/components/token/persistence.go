package token

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type (
	// Persistence holds the bearer token. Writes go to the durable backend first and
	// then to memory; reads are served from memory so they never block on I/O.
	Persistence struct {
		backend Backend
		logger  zerolog.Logger

		mu    sync.RWMutex
		token string
	}
)

func NewPersistence(backend Backend, logger zerolog.Logger) *Persistence {
	return &Persistence{
		backend: backend,
		logger:  logger.With().Str("component", "token").Logger(),
	}
}

// Start restores the persisted token on startup and closes the backend on shutdown.
func (p *Persistence) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: p.Load,
		OnStop: func(context.Context) error {
			return p.backend.Close()
		},
	})
}

// Load reads the token from the backend into memory.
func (p *Persistence) Load(ctx context.Context) error {
	token, ok, err := p.backend.Get(ctx, Key)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to load persisted token")
		return err
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.logger.Debug().Bool("present", ok && token != "").Msg("Persisted token loaded")
	return nil
}

// Token returns the current token. An empty token counts as absent.
func (p *Persistence) Token() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.token != ""
}

// Save persists token. On error the previous token stays in effect.
func (p *Persistence) Save(ctx context.Context, token string) error {
	if err := p.backend.Set(ctx, Key, token); err != nil {
		return err
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return nil
}

// Remove forgets the token. Memory is cleared even when the backend delete fails,
// so no further request carries it; the error is returned for reporting.
func (p *Persistence) Remove(ctx context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()

	return p.backend.Delete(ctx, Key)
}

// Ping checks the backend within a short deadline.
func (p *Persistence) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.backend.Ping(ctx)
}
