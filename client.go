package modexia

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/modexia/client-go/internal/api"
	"github.com/modexia/client-go/internal/observability"
)

// Version is the SDK version.
const Version = api.Version

// Client is the Modexia client for agent payments. It is safe for
// concurrent use: every method call is an independent request sequence
// over the immutable configuration established at construction.
type Client struct {
	apiClient *api.Client
	baseURL   string
	log       *slog.Logger
}

// resolveBaseURL applies the documented resolution order: explicit option,
// then the MODEXIA_BASE_URL environment variable, then a default chosen by
// key prefix. Keys without a recognized prefix target a local dev server.
func resolveBaseURL(explicit, apiKey string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(baseURLEnvVar); env != "" {
		return env
	}
	switch {
	case strings.HasPrefix(apiKey, "mx_live_"):
		return liveBaseURL
	case strings.HasPrefix(apiKey, "mx_test_"):
		return testBaseURL
	default:
		return localBaseURL
	}
}

// New creates a Modexia client with the given API key.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	if log == nil {
		log = slog.New(observability.NewNoopHandler())
	}

	baseURL := resolveBaseURL(cfg.baseURL, apiKey)
	log.Debug("resolved base URL", slog.String("base_url", baseURL))

	apiClient, err := api.NewClient(api.Config{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		Timeout:       cfg.timeout,
		HTTPClient:    cfg.httpClient,
		MaxRetries:    cfg.retries,
		RetryDelay:    cfg.retryDelay,
		RetryMaxDelay: cfg.retryMaxDelay,
		RetryOn:       cfg.retryOn,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiClient: apiClient,
		baseURL:   baseURL,
		log:       log,
	}

	if cfg.validate {
		timeout := cfg.timeout
		if timeout <= 0 {
			timeout = api.DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := c.Validate(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Validate confirms the server accepts the API key. It performs the same
// probe WithValidation runs at construction; a rejected key surfaces as
// an *AuthError.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.Me(ctx)
	return err
}

// BaseURL returns the API origin the client resolved at construction.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections held by the client. The client remains
// usable afterwards; there is no other state to tear down.
func (c *Client) Close() error {
	c.apiClient.CloseIdleConnections()
	return nil
}
