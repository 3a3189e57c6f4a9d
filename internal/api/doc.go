// Package api provides HTTP client functionality for communicating with the
// Modexia API. It handles authentication, request/response serialization,
// and automatic retry with exponential backoff for transient failures.
//
// # Client Creation
//
// The package provides two ways to create a client:
//
//   - [NewClient]: Struct-based configuration for explicit, type-safe setup.
//   - [New]: Functional options pattern for flexible configuration.
//
// Both methods require an API key and base URL. The API key is sent via the
// x-modexia-key header on every request.
//
// # Retry Behavior
//
// The client automatically retries failed requests with exponential backoff.
// By default, requests are retried up to 3 times for these HTTP status codes:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//   - 504 Gateway Timeout
//
// The retry delay doubles with each attempt (500ms, 1s, 2s, ...) with 20%
// jitter, capped at 15s. Configure retry behavior using [Config.MaxRetries],
// [Config.RetryDelay], [Config.RetryMaxDelay], and [Config.RetryOn].
//
// Request bodies are marshaled once before the first attempt, so a retried
// POST carries byte-identical payloads, idempotency key included.
//
// # Error Handling
//
// Terminal HTTP errors are reported as [*Error]. Transport failures and
// transient statuses that survive every retry are reported as
// [*NetworkError] wrapping the final cause. Sentinels for errors.Is:
//
//   - [ErrUnauthorized]: API key rejected (401 or 403).
//   - [ErrRateLimited]: Rate limit exceeded (429).
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// methods on a single Client simultaneously.
package api
