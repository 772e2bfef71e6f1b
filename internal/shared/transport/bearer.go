package transport

import (
	"net/http"

	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/rs/zerolog"
)

type (
	// TokenSource yields the current bearer token, if any.
	TokenSource interface {
		Token() (string, bool)
	}

	// BearerTransport attaches "Authorization: Bearer <token>" to every outgoing request
	// while a token is persisted. The caller's request is never modified.
	BearerTransport struct {
		tokens TokenSource
		next   http.RoundTripper
		logger zerolog.Logger
	}
)

func NewBearerTransport(tokens TokenSource, next http.RoundTripper, logger zerolog.Logger) *BearerTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &BearerTransport{
		tokens: tokens,
		next:   next,
		logger: logger.With().Str("component", "transport").Logger(),
	}
}

// NewHTTPClient returns the client used for every call to the remote authority.
func NewHTTPClient(cfg *config.Config, tokens TokenSource, logger zerolog.Logger) *http.Client {
	return &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: NewBearerTransport(tokens, http.DefaultTransport, logger),
	}
}

// Augment returns req with the bearer header set on a copy, or req itself when no token is present.
func (t *BearerTransport) Augment(req *http.Request) *http.Request {
	token, ok := t.tokens.Token()
	if !ok {
		return req
	}
	handled := req.Clone(req.Context())
	handled.Header.Set("Authorization", "Bearer "+token)
	return handled
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	handled := t.Augment(req)

	t.logger.Debug().
		Str("method", handled.Method).
		Str("url", handled.URL.String()).
		Bool("bearer", handled != req).
		Msg("Outgoing request")

	return t.next.RoundTrip(handled)
}
