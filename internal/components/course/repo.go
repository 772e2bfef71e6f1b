package course

import (
	"net/http"

	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/andrasnagy-data/learning-center/internal/shared/resource"
	"github.com/rs/zerolog"
)

const endpoint = "/courses"

// NewRepo returns the remote course collection. Requests go through client, so they carry the bearer token.
func NewRepo(cfg *config.Config, client *http.Client, logger zerolog.Logger) resource.Repository[Course] {
	return resource.NewClient[Course](
		client,
		cfg.ServerBasePath,
		endpoint,
		logger,
		resource.WithRetries(cfg.HTTPRetries),
	)
}
