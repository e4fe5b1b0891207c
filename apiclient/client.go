package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/obs"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 64 << 10

// TokenSource supplies the Authorization header value for the current session.
type TokenSource interface {
	BearerToken(ctx context.Context) (string, bool)
}

// Client calls a JSON REST backend. A configured Client is shared; For
// derives a per-session copy carrying that session's credentials.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	retryAttempts  int
	retryDelay     time.Duration
	target         string
	needsAuth      func(path string) bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how often idempotent reads are attempted.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// WithAuthPolicy decides which paths carry the Authorization header.
// The default is auth.NeedsAuthentication.
func WithAuthPolicy(needsAuth func(path string) bool) Option {
	return func(c *Client) { c.needsAuth = needsAuth }
}

// WithTarget names the backend in metrics and logs.
func WithTarget(name string) Option {
	return func(c *Client) { c.target = name }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: 1,
		target:        "api",
		needsAuth:     auth.NeedsAuthentication,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// For returns a copy that authenticates with tokens and reports rejected
// credentials to onUnauthorized.
func (c *Client) For(tokens TokenSource, onUnauthorized func(ctx context.Context)) *Client {
	cp := *c
	cp.tokens = tokens
	cp.onUnauthorized = onUnauthorized
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends body as JSON and decodes the response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	log.Debug().Str("target", c.target).Str("method", method).Str("path", path).Msg("Backend request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		obs.ObserveBackendCall(c.target, 0)
		log.Err(err).Str("target", c.target).Str("method", method).Str("path", path).Msg("No response from backend")
		return &APIError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	obs.ObserveBackendCall(c.target, resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return c.handleErrorResponse(ctx, method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("[Client Do] decode %s %s: %w", method, path, err)
	}
	return nil
}

// newRequest attaches JSON headers and, unless path is public, the bearer token.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[Client newRequest] encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("[Client newRequest] %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil && c.needsAuth(path) {
		if bearer, ok := c.tokens.BearerToken(ctx); ok {
			req.Header.Set("Authorization", bearer)
		}
	}
	return req, nil
}

func (c *Client) handleErrorResponse(ctx context.Context, method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       raw,
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}

	logger := log.With().Str("target", c.target).Str("method", method).Str("path", path).Int("status", resp.StatusCode).Logger()
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		logger.Warn().Msg("Backend rejected credentials")
		if c.onUnauthorized != nil && !auth.IsLoginRequest(path) {
			c.onUnauthorized(ctx)
		}
	case http.StatusForbidden:
		logger.Warn().Msg("Access denied, insufficient permissions")
	case http.StatusNotFound:
		logger.Warn().Msg("Resource not found")
	default:
		if resp.StatusCode >= http.StatusInternalServerError {
			logger.Error().Str("body", string(raw)).Msg("Backend server error")
		} else {
			logger.Info().Str("message", apiErr.Message).Msg("Backend rejected request")
		}
	}
	return apiErr
}

// Get decodes the response of a GET into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out)
	return out, err
}

func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out)
	return out, err
}

func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPatch, path, body, &out)
	return out, err
}

func Delete(ctx context.Context, c *Client, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// GetWithRetry is Get wrapped in the client's retry policy.
func GetWithRetry[T any](ctx context.Context, c *Client, path string) (T, error) {
	return Retry(ctx, c.retryAttempts, c.retryDelay, func(ctx context.Context) (T, error) {
		return Get[T](ctx, c, path)
	})
}
