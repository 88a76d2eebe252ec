// Package api implements the REST collaborator for the hierarchy package: an
// authenticated client with retries, rate limiting, and TTL response caching,
// plus the one-shot request wrappers around the account service's session,
// user, access-key, and role endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tenantgrid/tenantgrid/internal/cache"
	"github.com/tenantgrid/tenantgrid/internal/httputil"
	"github.com/tenantgrid/tenantgrid/pkg/logger"
	"github.com/tenantgrid/tenantgrid/pkg/metrics"
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries           int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	BackoffMultiplier    float64
	Jitter               float64
	RetryableStatusCodes []int
}

// DefaultRetryConfig returns sensible defaults for retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryableStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// Config holds client configuration. Either APIKey or Username/Password must
// be set.
type Config struct {
	BaseURL  string
	APIKey   string
	Username string
	Password string

	HTTPClient *http.Client
	Timeout    time.Duration
	Retry      *RetryConfig

	// Cache, when set, holds GET responses for CacheTTL per cache key.
	Cache    cache.Cache
	CacheTTL time.Duration

	// RequestsPerSecond caps outbound request rate; zero means uncapped.
	RequestsPerSecond float64

	Logger *logger.Logger
}

// Client talks to the account service. It implements
// hierarchy.TopologyFetcher and hierarchy.UserFetcher.
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	password   string
	httpClient *http.Client
	retry      RetryConfig
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *logger.Logger

	session session
}

// New creates a client. The base URL and one credential form are required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.APIKey == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, fmt.Errorf("either APIKey or Username and Password are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	retry := DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("api-client")
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		retry:      retry,
		limiter:    limiter,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		log:        log,
	}, nil
}

// getJSON issues a cached, authenticated GET and decodes the body into out.
// The cache key is the full request path including query parameters.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := path
	if len(query) > 0 {
		endpoint = path + "?" + query.Encode()
	}

	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, endpoint); err == nil && ok {
			metrics.RecordCacheHit()
			return json.Unmarshal(body, out)
		}
		metrics.RecordCacheMiss()
	}

	body, err := c.doRaw(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, endpoint, body, c.cacheTTL); err != nil {
			c.log.WithError(err).WithField("endpoint", endpoint).Warn("cache write failed")
		}
	}
	return json.Unmarshal(body, out)
}

// doJSON issues an uncached authenticated request with an optional JSON body
// and decodes the response into out (which may be nil).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	resp, err := c.send(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return c.statusError(endpoint, resp)
	}
	return httputil.DecodeResponse(resp, out)
}

// doRaw issues an authenticated request and returns the raw response body.
func (c *Client) doRaw(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	resp, err := c.send(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, c.statusError(endpoint, resp)
	}
	body, err := httputil.ReadAllStrict(resp.Body, 8<<20)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	return body, nil
}

// send runs the retry loop around one logical request, re-authenticating once
// on 401 before giving up.
func (c *Client) send(ctx context.Context, method, endpoint string, payload interface{}) (*http.Response, error) {
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = data
	}

	done := metrics.RequestStarted()
	defer done()
	start := time.Now()

	reauthed := false
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordRetry(endpoint)
			select {
			case <-ctx.Done():
				return nil, &TransportError{Endpoint: endpoint, Err: ctx.Err()}
			case <-time.After(c.backoff(attempt)):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &TransportError{Endpoint: endpoint, Err: err}
			}
		}

		resp, err := c.roundTrip(ctx, method, endpoint, body)
		if err != nil {
			if retryableNetErr(err) {
				lastErr = err
				continue
			}
			metrics.RecordRequest(method, endpoint, 0, time.Since(start))
			return nil, &TransportError{Endpoint: endpoint, Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized && c.apiKey == "" && !reauthed {
			resp.Body.Close()
			reauthed = true
			if err := c.login(ctx); err != nil {
				metrics.RecordRequest(method, endpoint, http.StatusUnauthorized, time.Since(start))
				return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
			}
			attempt--
			continue
		}

		if c.retryableStatus(resp.StatusCode) {
			lastErr = &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			resp.Body.Close()
			continue
		}

		metrics.RecordRequest(method, endpoint, resp.StatusCode, time.Since(start))
		return resp, nil
	}

	metrics.RecordRequest(method, endpoint, 0, time.Since(start))
	return nil, &TransportError{Endpoint: endpoint, Err: lastErr}
}

// roundTrip performs a single HTTP exchange with authentication headers.
func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// postUnauthenticated issues one request without session credentials, for the
// login exchange itself.
func (c *Client) postUnauthenticated(ctx context.Context, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode >= 400 {
		return c.statusError(endpoint, resp)
	}
	return httputil.DecodeResponse(resp, out)
}

func (c *Client) statusError(endpoint string, resp *http.Response) error {
	defer resp.Body.Close()
	excerpt, truncated, err := httputil.ReadAllWithLimit(resp.Body, 64<<10)
	msg := strings.TrimSpace(string(excerpt))
	if err != nil {
		msg = "unreadable response body"
	} else if truncated {
		msg += "...(truncated)"
	}
	return &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
}

func (c *Client) backoff(attempt int) time.Duration {
	backoff := float64(c.retry.InitialBackoff) * math.Pow(c.retry.BackoffMultiplier, float64(attempt-1))
	if backoff > float64(c.retry.MaxBackoff) {
		backoff = float64(c.retry.MaxBackoff)
	}
	if c.retry.Jitter > 0 {
		backoff += backoff * c.retry.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(backoff)
}

func (c *Client) retryableStatus(code int) bool {
	for _, retryable := range c.retry.RetryableStatusCodes {
		if code == retryable {
			return true
		}
	}
	return false
}

func retryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
