// Package observability provides logging plumbing shared by the SDK.
//
// The SDK never logs unless the caller installs a logger, so the default
// handler discards everything and reports itself as disabled for all levels.
package observability

import (
	"context"
	"log/slog"
)

var _ slog.Handler = (*NoopHandler)(nil)

// NoopHandler is an slog.Handler that drops all records.
type NoopHandler struct{}

// NewNoopHandler returns a handler that discards all log records.
func NewNoopHandler() slog.Handler {
	return &NoopHandler{}
}

// Enabled reports false for every level so callers skip attribute evaluation.
func (h *NoopHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

// Handle discards the record.
func (h *NoopHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

// WithAttrs returns the handler unchanged.
func (h *NoopHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup returns the handler unchanged.
func (h *NoopHandler) WithGroup(_ string) slog.Handler {
	return h
}
