// Package httpclient provides a JSON HTTP client with bearer-token
// authentication, exponential-backoff retries and uniform result values.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is the per-request timeout applied when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Client is a resilient JSON client bound to one base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retry      RetryConfig
	headers    http.Header
	logger     zerolog.Logger
	sleep      func(time.Duration)

	mu        sync.RWMutex
	authToken string
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is prepended to every request path. It may be empty when
	// callers pass absolute URLs.
	BaseURL string

	// Timeout bounds every single attempt.
	Timeout time.Duration

	// Retry controls the attempt count and the backoff schedule.
	Retry RetryConfig

	// Headers are sent with every request.
	Headers map[string]string

	// HTTPClient lets callers share a transport between short-lived clients.
	HTTPClient *http.Client

	// Logger defaults to the global logger tagged with component=http-client.
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration with the default timeout and retry policy.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: DefaultTimeout,
		Retry:   DefaultRetryConfig(),
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL != "" && !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("base url must be absolute http(s) url (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := log.With().Str("component", "http-client").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	headers := make(http.Header, len(cfg.Headers)+2)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	for key, value := range cfg.Headers {
		headers.Set(key, value)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		retry:      cfg.Retry.normalized(),
		headers:    headers,
		logger:     logger,
		sleep:      time.Sleep,
	}, nil
}

// SetAuthToken attaches "Authorization: Bearer <token>" to all subsequent requests.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// ClearAuthToken removes the Authorization header from subsequent requests.
func (c *Client) ClearAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// Post sends body as JSON to path and decodes the response into T.
// A nil body sends an empty request body.
func Post[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return execute[T](ctx, c, http.MethodPost, path, body)
}

// Get fetches path and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string) Result[T] {
	return execute[T](ctx, c, http.MethodGet, path, nil)
}

func execute[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	statusCode, payload, err := c.do(ctx, method, path, body)
	if err != nil {
		return failure[T](err)
	}

	var data T
	if err := json.Unmarshal(payload, &data); err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("status_code", statusCode).
			Msg("Failed to decode upstream response")
		return failure[T](&UpstreamError{
			StatusCode: statusCode,
			Class:      ErrorClassDecode,
			Message:    fmt.Sprintf("decode response: %v", err),
			Err:        err,
		})
	}

	return success(data, statusCode)
}

// do performs the request with retries and returns the final status and body.
// Caller cancellation is not propagated into the retry loop; each attempt is
// bounded by the client timeout instead.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	ctx = context.WithoutCancel(ctx)

	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	target := c.resolve(path)

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	var statusCode int
	var payload []byte

	err := retryWithBackoff(c.retry, c.sleep, c.logger, func(attempt int) error {
		var attemptErr error
		statusCode, payload, attemptErr = c.attempt(ctx, method, target, path, encoded, attempt)
		return attemptErr
	})
	if err != nil {
		return 0, nil, err
	}

	return statusCode, payload, nil
}

func (c *Client) attempt(ctx context.Context, method, target, path string, encoded []byte, attempt int) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if encoded != nil {
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers.Clone()
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("attempt", attempt).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues(method, path, "network_error").Inc()
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Msg("HTTP request failed")
		return 0, nil, &UpstreamError{
			Class:   ErrorClassNetwork,
			Message: err.Error(),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return 0, nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    fmt.Sprintf("read response body: %v", err),
			Err:        err,
		}
	}

	upstreamRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if errClass := classifyStatus(resp.StatusCode); errClass != "" {
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()
		message := remoteMessage(payload)
		if message == "" {
			message = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		}

		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Int("attempt", attempt).
			Msg("Upstream request error")

		return resp.StatusCode, nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      errClass,
			Message:    message,
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status_code", resp.StatusCode).
		Msg("Upstream request succeeded")

	return resp.StatusCode, payload, nil
}

// resolve joins the base URL and path. Absolute paths bypass the base URL.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// remoteMessage extracts a "message" field from an error payload, if any.
func remoteMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Message
}
