package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/andrasnagy-data/learning-center/internal/components/token"
	"github.com/rs/zerolog/hlog"
)

type (
	pinger interface {
		Ping(ctx context.Context) error
	}

	// HealthSrvc reports whether the token backend is reachable
	HealthSrvc struct {
		tokens pinger
	}

	// HealthResponse represents the response structure for health check endpoint
	HealthResponse struct {
		Status     string    `json:"status"`
		Timestamp  time.Time `json:"timestamp"`
		TokenStore bool      `json:"token_store"`
	}
)

func NewHealthHandler(srvc *HealthSrvc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := hlog.FromRequest(r)

		response := srvc.check(ctx)

		w.Header().Set("Content-Type", "application/json")

		if response.TokenStore {
			logger.Debug().Msg("Token store healthcheck ok")
			w.WriteHeader(http.StatusOK)
		} else {
			logger.Error().Msg("Token store healthcheck failed")
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error().Err(err).Msg("Failed to encode health check response")
		}
	}
}

func NewHealthSrvc(tokens *token.Persistence) *HealthSrvc {
	return &HealthSrvc{tokens: tokens}
}

func (s *HealthSrvc) check(ctx context.Context) HealthResponse {
	ok := s.tokens.Ping(ctx) == nil

	status := "serving"
	if !ok {
		status = "not serving"
	}
	return HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		TokenStore: ok,
	}
}
