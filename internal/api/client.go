package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Error is the structured error body returned by the backend.
type Error struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client wraps the HTTP transport to the backend: base URL, the shared
// Authorization header, retries, and decoding of structured error bodies.
// The session manager is the only writer of the auth token.
type Client struct {
	client *resty.Client
	logger zerolog.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

func NewClient(baseURL string, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	rc.AddRetryCondition(retryCondition)

	return &Client{
		client: rc,
		logger: logger,
	}
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// SetToken installs the bearer token on the shared default header map.
func (c *Client) SetToken(token string) {
	c.client.Header.Set("Authorization", "Bearer "+token)
}

// ClearToken removes the bearer token from the shared default header map.
func (c *Client) ClearToken() {
	c.client.Header.Del("Authorization")
}

// OnUnauthorized registers a callback fired when the backend answers 401
// to anything but an auth endpoint. The callback must tolerate repeated
// invocations: several in-flight requests can each observe the same
// expired session.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) Get(ctx context.Context, path string, params map[string]string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, params, result)
}

func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, nil, result)
}

func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, nil, result)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, params map[string]string, result any) error {
	req := c.client.R().SetContext(ctx).SetError(&Error{})
	if body != nil {
		req.SetBody(body)
	}
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return fmt.Errorf("request failed: %w", err)
	}

	// A 401 from the auth endpoints means the submitted credentials were
	// wrong, not that the current session died; only a rejected bearer
	// token elsewhere forces a logout.
	if resp.StatusCode() == http.StatusUnauthorized && !strings.HasPrefix(path, "/auth/") {
		c.fireUnauthorized()
	}

	if resp.IsError() {
		apiErr, ok := resp.Error().(*Error)
		if !ok || apiErr == nil {
			apiErr = &Error{}
		}
		apiErr.Status = resp.StatusCode()
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", apiErr.Status).
			Str("message", apiErr.Message).
			Msg("Request rejected")
		return apiErr
	}

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode()).Msg("Request completed")
	return nil
}

func (c *Client) fireUnauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
