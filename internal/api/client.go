package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/modexia/client-go/internal/observability"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.4.0"

// DefaultTimeout is the per-request timeout applied when the caller does
// not supply an http.Client of their own.
const DefaultTimeout = 15 * time.Second

const defaultUserAgent = "Modexia-Go/" + Version

// maxErrorBody bounds how much of an error response is read; the excerpt
// included in error messages is capped further below.
const maxErrorBody = 64 * 1024

// Client is the HTTP client for the Modexia API.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	retry      *RetryConfig
	log        *slog.Logger
}

// Config holds struct-based configuration for NewClient.
type Config struct {
	// BaseURL is the API origin, without a trailing slash. Required.
	BaseURL string
	// APIKey is sent in the x-modexia-key header on every request. Required.
	APIKey string
	// Timeout applies to the default http.Client. Ignored when HTTPClient
	// is set. Defaults to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport entirely.
	HTTPClient *http.Client
	// MaxRetries overrides the default retry count when positive.
	MaxRetries int
	// RetryDelay overrides the base backoff delay when positive.
	RetryDelay time.Duration
	// RetryMaxDelay overrides the backoff cap when positive.
	RetryMaxDelay time.Duration
	// RetryOn overrides the set of retryable status codes when non-empty.
	RetryOn []int
	// Logger receives debug records for attempts and backoff. Defaults to
	// a handler that discards everything.
	Logger *slog.Logger
}

// Option configures the API client.
type Option func(*Config)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithTimeout sets the default HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithRetries sets the number of retries.
func WithRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithRetryDelay sets the base backoff delay.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// WithRetryMaxDelay sets the backoff cap.
func WithRetryMaxDelay(max time.Duration) Option {
	return func(c *Config) {
		c.RetryMaxDelay = max
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Config) {
		c.RetryOn = statusCodes
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// New creates an API client using functional options.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := Config{APIKey: apiKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClient(cfg)
}

// NewClient creates an API client from a Config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	retry := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		retry.BaseDelay = cfg.RetryDelay
	}
	if cfg.RetryMaxDelay > 0 {
		retry.MaxDelay = cfg.RetryMaxDelay
	}
	if len(cfg.RetryOn) > 0 {
		retry.RetryableOn = statusSet(cfg.RetryOn)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(observability.NewNoopHandler())
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		userAgent:  defaultUserAgent,
		httpClient: httpClient,
		retry:      retry,
		log:        log,
	}, nil
}

// statusSet builds a RetryableOn predicate from a list of status codes.
func statusSet(codes []int) func(int) bool {
	set := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return func(statusCode int) bool {
		_, ok := set[statusCode]
		return ok
	}
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections releases idle connections held by the transport.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Do performs an authenticated JSON request. Transient failures are retried
// with exponential backoff; the body is marshaled once up front so every
// attempt sends identical bytes. A transient status that survives all
// retries is reported as a *NetworkError wrapping the final *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	fullURL := c.baseURL + path

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("x-modexia-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt >= c.retry.MaxRetries {
				return &NetworkError{Err: err, URL: fullURL, Attempts: attempt + 1}
			}
			c.log.Debug("request failed, backing off",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err))
			if werr := c.retry.Wait(ctx, attempt); werr != nil {
				return &NetworkError{Err: werr, URL: fullURL, Attempts: attempt + 1}
			}
			continue
		}

		if c.retry.ShouldRetry(attempt, resp.StatusCode) {
			drain(resp)
			c.log.Debug("transient status, backing off",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt+1))
			if werr := c.retry.Wait(ctx, attempt); werr != nil {
				return &NetworkError{Err: werr, URL: fullURL, Attempts: attempt + 1}
			}
			continue
		}

		return c.handleResponse(resp, path, fullURL, attempt, result)
	}
}

// handleResponse decodes a terminal response or maps it to an error.
func (c *Client) handleResponse(resp *http.Response, path, fullURL string, attempt int, result interface{}) error {
	defer resp.Body.Close()

	// 402 responses carry a regular payload; paywalls are negotiated a
	// layer above, never treated as request errors here.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusPaymentRequired {
		apiErr := parseErrorResponse(resp, path)
		if c.retry.Retryable(resp.StatusCode) {
			return &NetworkError{Err: apiErr, URL: fullURL, Attempts: attempt + 1}
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			// An empty body is valid for endpoints with nothing to say.
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Fetch performs a GET outside the typed endpoint surface, reusing the
// client's retry policy for transport errors and transient statuses. The
// Modexia key is attached only when withAuth is set; external resources
// must never see it. Whatever status the server settles on is returned
// as-is, and the caller owns resp.Body.
func (c *Client) Fetch(ctx context.Context, rawURL string, query url.Values, header http.Header, withAuth bool) (*http.Response, error) {
	fullURL := rawURL
	if len(query) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse url: %w", err)
		}
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
		fullURL = u.String()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		if withAuth {
			req.Header.Set("x-modexia-key", c.apiKey)
		}
		for key, values := range header {
			req.Header.Del(key)
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt >= c.retry.MaxRetries {
				return nil, &NetworkError{Err: err, URL: fullURL, Attempts: attempt + 1}
			}
			c.log.Debug("fetch failed, backing off",
				slog.String("url", fullURL),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err))
			if werr := c.retry.Wait(ctx, attempt); werr != nil {
				return nil, &NetworkError{Err: werr, URL: fullURL, Attempts: attempt + 1}
			}
			continue
		}

		if c.retry.ShouldRetry(attempt, resp.StatusCode) {
			drain(resp)
			c.log.Debug("fetch got transient status, backing off",
				slog.String("url", fullURL),
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt+1))
			if werr := c.retry.Wait(ctx, attempt); werr != nil {
				return nil, &NetworkError{Err: werr, URL: fullURL, Attempts: attempt + 1}
			}
			continue
		}

		return resp, nil
	}
}

// parseErrorResponse maps an error response to an *Error. The server
// reports failures as {"error": "..."}; anything else becomes a bounded
// excerpt of the body.
func parseErrorResponse(resp *http.Response, path string) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var errResp struct {
		Error     string `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    errResp.Error,
			RequestID:  errResp.RequestID,
		}
	}

	excerpt := string(body)
	if len(excerpt) > 512 {
		excerpt = excerpt[:512]
	}
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d at %s: %s", resp.StatusCode, path, excerpt),
	}
}

// drain discards the response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
