// Package resource is a generic JSON CRUD client for collections exposed by the remote
// authority under {base}{endpoint}.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

var ErrStatus = errors.New("unexpected response status")

type (
	// Repository is the capability every entity collection offers.
	Repository[T any] interface {
		Create(ctx context.Context, item T) (*T, error)
		GetAll(ctx context.Context) ([]T, error)
		GetByID(ctx context.Context, id int) (*T, error)
		Update(ctx context.Context, id int, item T) (*T, error)
		Delete(ctx context.Context, id int) error
	}

	// Client implements Repository over HTTP. Failed calls are retried.
	Client[T any] struct {
		http            *http.Client
		path            string
		retries         uint64
		initialInterval time.Duration
		logger          zerolog.Logger
	}

	Option func(*options)

	options struct {
		retries         uint64
		initialInterval time.Duration
	}
)

// WithRetries sets how many times a failed call is retried. Default 2.
func WithRetries(n uint64) Option {
	return func(o *options) { o.retries = n }
}

// WithInitialInterval sets the first backoff delay. Default 200ms.
func WithInitialInterval(d time.Duration) Option {
	return func(o *options) { o.initialInterval = d }
}

func NewClient[T any](httpClient *http.Client, basePath, endpoint string, logger zerolog.Logger, opts ...Option) *Client[T] {
	o := options{retries: 2, initialInterval: 200 * time.Millisecond}
	for _, fn := range opts {
		fn(&o)
	}
	return &Client[T]{
		http:            httpClient,
		path:            basePath + endpoint,
		retries:         o.retries,
		initialInterval: o.initialInterval,
		logger:          logger.With().Str("component", "resource").Str("endpoint", endpoint).Logger(),
	}
}

func (c *Client[T]) Create(ctx context.Context, item T) (*T, error) {
	out := new(T)
	if err := c.do(ctx, http.MethodPost, c.path, item, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client[T]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, c.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client[T]) GetByID(ctx context.Context, id int) (*T, error) {
	out := new(T)
	if err := c.do(ctx, http.MethodGet, c.itemPath(id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client[T]) Update(ctx context.Context, id int, item T) (*T, error) {
	out := new(T)
	if err := c.do(ctx, http.MethodPut, c.itemPath(id), item, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client[T]) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
}

func (c *Client[T]) itemPath(id int) string {
	return fmt.Sprintf("%s/%d", c.path, id)
}

// do sends one JSON request, retrying transport errors and error statuses.
// A body that cannot be decoded is not retried.
func (c *Client[T]) do(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempt := 0
	op := func() error {
		attempt++

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%w: %s", ErrStatus, res.Status)
		}
		if out == nil || res.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.retries), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		c.logger.Error().Err(err).
			Str("method", method).
			Str("url", url).
			Int("attempts", attempt).
			Msg("Request to remote authority failed")
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	return nil
}
