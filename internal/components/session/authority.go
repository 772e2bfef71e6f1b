package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/andrasnagy-data/learning-center/internal/shared/config"
)

var ErrRemoteStatus = errors.New("remote authority rejected the request")

type (
	authority interface {
		SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
		SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error)
	}

	remoteAuthority struct {
		client   *http.Client
		basePath string
	}
)

// NewAuthority returns a client for the remote authority's authentication endpoints.
func NewAuthority(cfg *config.Config, client *http.Client) authority {
	return &remoteAuthority{
		client:   client,
		basePath: cfg.ServerBasePath,
	}
}

func (a *remoteAuthority) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	res := new(SignUpResponse)
	if err := a.post(ctx, "/authentication/sign-up", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *remoteAuthority) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	res := new(SignInResponse)
	if err := a.post(ctx, "/authentication/sign-in", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *remoteAuthority) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.basePath+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %s", ErrRemoteStatus, endpoint, res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
