package modexia

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Base URLs selected by API key prefix when neither an explicit option nor
// the environment provides one.
const (
	liveBaseURL  = "https://api.modexia.software"
	testBaseURL  = "https://sandbox.modexia.software"
	localBaseURL = "http://localhost:3000"
)

// baseURLEnvVar is the environment override consulted once at construction.
const baseURLEnvVar = "MODEXIA_BASE_URL"

const (
	defaultWaitTimeout  = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	validate   bool
	logger     *slog.Logger

	retries       int
	retryDelay    time.Duration
	retryMaxDelay time.Duration
	retryOn       []int
}

// transferConfig holds per-call configuration for Transfer.
type transferConfig struct {
	idempotencyKey string
	wait           bool
	waitTimeout    time.Duration
	pollInterval   time.Duration
}

// fetchConfig holds per-call configuration for SmartFetch.
type fetchConfig struct {
	query      url.Values
	header     http.Header
	maxAutoPay float64
	noAutoPay  bool
}

// Option configures the client.
type Option func(*clientConfig)

// TransferOption configures a single Transfer call.
type TransferOption func(*transferConfig)

// FetchOption configures a single SmartFetch call.
type FetchOption func(*fetchConfig)

// WithBaseURL sets the API base URL, taking precedence over the
// MODEXIA_BASE_URL environment variable and the key-prefix default.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. The client's own timeout
// settings apply; WithTimeout is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
// Default: 15 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithValidation makes construction probe the identity endpoint so a bad
// key fails at startup rather than on first use.
func WithValidation() Option {
	return func(c *clientConfig) {
		c.validate = true
	}
}

// WithLogger sets the logger used for debug and progress records. Without
// it the client stays silent.
func WithLogger(log *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = log
	}
}

// WithRetries sets the number of retries for API calls.
// Default: 3
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryDelay sets the base backoff delay; each retry doubles it.
// Default: 500ms
func WithRetryDelay(delay time.Duration) Option {
	return func(c *clientConfig) {
		c.retryDelay = delay
	}
}

// WithRetryMaxDelay caps the backoff delay between attempts.
// Default: 15 seconds
func WithRetryMaxDelay(max time.Duration) Option {
	return func(c *clientConfig) {
		c.retryMaxDelay = max
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [408, 429, 500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithIdempotencyKey sets an explicit idempotency key for a transfer.
// Without it a random key is generated for the call.
func WithIdempotencyKey(key string) TransferOption {
	return func(c *transferConfig) {
		c.idempotencyKey = key
	}
}

// WithoutWait returns the submission receipt immediately instead of
// polling for a terminal transaction state.
func WithoutWait() TransferOption {
	return func(c *transferConfig) {
		c.wait = false
	}
}

// WithWaitTimeout bounds how long Transfer polls for a terminal state.
// Default: 30 seconds
func WithWaitTimeout(timeout time.Duration) TransferOption {
	return func(c *transferConfig) {
		c.waitTimeout = timeout
	}
}

// WithPollInterval sets the delay between status polls.
// Default: 2 seconds
func WithPollInterval(interval time.Duration) TransferOption {
	return func(c *transferConfig) {
		c.pollInterval = interval
	}
}

// WithQueryParam adds a query parameter to a SmartFetch request.
func WithQueryParam(key, value string) FetchOption {
	return func(c *fetchConfig) {
		if c.query == nil {
			c.query = make(url.Values)
		}
		c.query.Add(key, value)
	}
}

// WithHeader sets a request header on a SmartFetch request, overriding
// any default of the same name.
func WithHeader(key, value string) FetchOption {
	return func(c *fetchConfig) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Set(key, value)
	}
}

// WithMaxAutoPay caps the amount SmartFetch will pay to settle a paywall.
// Challenges above the cap are returned to the caller unpaid. Without a
// cap any challenged amount is paid.
func WithMaxAutoPay(amount float64) FetchOption {
	return func(c *fetchConfig) {
		c.maxAutoPay = amount
	}
}

// WithoutAutoPay disables paywall settlement; 402 responses are returned
// to the caller untouched.
func WithoutAutoPay() FetchOption {
	return func(c *fetchConfig) {
		c.noAutoPay = true
	}
}
