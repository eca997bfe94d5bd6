// Package client is a typed Go client for the user management API with a
// read cache, bounded retries and mutation-driven invalidation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryDelay      = time.Second
	defaultMaxRetryDelay   = 30 * time.Second
	defaultStaleTime       = 5 * time.Minute
	defaultGCTime          = 10 * time.Minute
	defaultStatsStaleTime  = 2 * time.Minute
	defaultSessionStale    = 5 * time.Minute
	headerRequestID        = "X-Request-ID"
	headerContentType      = "Content-Type"
	mimeApplicationJSON    = "application/json"
	headerAuthorization    = "Authorization"
	authorizationSchemeFmt = "Bearer %s"
)

// Config holds client settings. Zero values fall back to defaults.
type Config struct {
	// BaseURL includes the API prefix, e.g. http://localhost:3001/api/v1.
	BaseURL    string
	HTTPClient *http.Client

	// RetryAttempts is the number of retries after the first failed GET.
	// Negative disables retries.
	RetryAttempts int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	// StaleTimes overrides the stale time per operation (OpUsers, OpStats...).
	StaleTimes       map[string]time.Duration
	DefaultStaleTime time.Duration
	GCTime           time.Duration

	Logger *zerolog.Logger
}

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	delay      time.Duration
	maxDelay   time.Duration
	stale      map[string]time.Duration
	cache      *QueryCache
	log        zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	retries := cfg.RetryAttempts
	switch {
	case retries == 0:
		retries = defaultRetryAttempts
	case retries < 0:
		retries = 0
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	maxDelay := cfg.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}
	gcTime := cfg.GCTime
	if gcTime <= 0 {
		gcTime = defaultGCTime
	}

	fallback := cfg.DefaultStaleTime
	if fallback <= 0 {
		fallback = defaultStaleTime
	}
	stale := map[string]time.Duration{
		OpUsers:    fallback,
		OpUser:     fallback,
		OpBooks:    fallback,
		OpStats:    defaultStatsStaleTime,
		OpValidate: defaultSessionStale,
	}
	for op, d := range cfg.StaleTimes {
		stale[op] = d
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		retries:    retries,
		delay:      delay,
		maxDelay:   maxDelay,
		stale:      stale,
		cache:      NewQueryCache(gcTime, log),
		log:        log,
	}
}

// SetToken sets the bearer access token sent with every request. An empty
// token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Cache exposes the read cache, mainly for manual invalidation.
func (c *Client) Cache() *QueryCache {
	return c.cache
}

// FieldError is one rejected input field reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status    int
	Message   string
	Details   []FieldError
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Details    []FieldError    `json:"details"`
	Pagination *Pagination     `json:"pagination"`
	RequestID  string          `json:"requestId"`
}

// do sends one logical request. Failed GETs are retried within the budget
// unless the server answered 401 or 403.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (*envelope, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	requestID := uuid.NewString()

	attempts := 1
	if method == http.MethodGet {
		attempts += c.retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			c.log.Debug().
				Str("method", method).
				Str("path", path).
				Int("attempt", attempt).
				Dur("wait", wait).
				Err(lastErr).
				Msg("retrying request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		env, err := c.send(ctx, method, target, requestID, payload)
		if err == nil {
			return env, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, method, target, requestID string, payload []byte) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", mimeApplicationJSON)
	if payload != nil {
		req.Header.Set(headerContentType, mimeApplicationJSON)
	}
	if token := c.Token(); token != "" {
		req.Header.Set(headerAuthorization, fmt.Sprintf(authorizationSchemeFmt, token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{
			Status:    resp.StatusCode,
			Message:   env.Error,
			Details:   env.Details,
			RequestID: resp.Header.Get(headerRequestID),
		}
	}
	return &env, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.delay << (attempt - 1)
	if d <= 0 || d > c.maxDelay {
		return c.maxDelay
	}
	return d
}

func retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return !errors.Is(err, context.Canceled)
	}
	return apiErr.Status != http.StatusUnauthorized && apiErr.Status != http.StatusForbidden
}

func decode[T any](env *envelope) (T, error) {
	var out T
	if env == nil || len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}

// cached runs fetch through the read cache under key.
func cached[T any](ctx context.Context, c *Client, op, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.cache.Get(ctx, key, c.stale[op], func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
