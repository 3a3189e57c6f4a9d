package modexia

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/modexia/client-go/internal/api"
)

// Transfer statuses reported in receipts.
const (
	StatusPending  = "PENDING"
	StatusComplete = "COMPLETE"
)

// Receipt describes a submitted or confirmed transfer.
type Receipt struct {
	// Success reports that the server accepted the transfer. It does not
	// imply on-chain confirmation; check Status for that.
	Success bool
	// Status is the last known transfer state, uppercased. StatusComplete
	// is terminal; StatusPending means the transfer is still settling.
	Status string
	TxID   string
	// TxHash is the on-chain transaction hash, set once confirmed.
	TxHash      string
	ErrorReason string

	// Raw holds the server's unmodified submission response. Its shape is
	// server-defined and not guaranteed stable; prefer the typed fields.
	Raw map[string]interface{}
}

// Transfer sends amount USDC from the authenticated agent's wallet to the
// recipient provider address.
//
// Inputs are validated before any request is sent: a non-positive amount
// or empty recipient fails with a *ValidationError and zero network I/O.
// Unless WithIdempotencyKey supplies one, a random idempotency key is
// generated once per call, so internal retries resubmit the identical
// request while separate calls never share a key.
//
// By default the call polls until the transfer reaches a terminal state
// and returns the confirmed receipt. If the wait budget elapses first,
// the last known status is returned rather than hanging; WithoutWait
// skips polling entirely. A transfer that reaches the FAILED state
// surfaces as a *PaymentError.
func (c *Client) Transfer(ctx context.Context, recipient string, amount float64, opts ...TransferOption) (*Receipt, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if recipient == "" {
		return nil, &ValidationError{Field: "recipient", Err: ErrMissingRecipient}
	}

	cfg := &transferConfig{
		wait:         true,
		waitTimeout:  defaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	key := cfg.idempotencyKey
	if key == "" {
		generated, err := newIdempotencyKey()
		if err != nil {
			return nil, fmt.Errorf("generate idempotency key: %w", err)
		}
		key = generated
	}

	c.log.Info("submitting transfer",
		slog.String("recipient", recipient),
		slog.String("amount", formatAmount(amount)))

	result, err := c.apiClient.Pay(ctx, api.PayParams{
		ProviderAddress: recipient,
		Amount:          formatAmount(amount),
		IdempotencyKey:  key,
	})
	if err != nil {
		return nil, wrapError(err)
	}

	if !result.Success {
		reason := result.ErrorReason
		if reason == "" {
			reason = "transfer rejected by server"
		}
		return nil, &PaymentError{Message: reason, TxID: result.TxID}
	}

	if cfg.wait && result.TxID != "" {
		return c.waitForTransfer(ctx, result.TxID, cfg)
	}

	return &Receipt{
		Success: true,
		Status:  StatusPending,
		TxID:    result.TxID,
		Raw:     result.Fields,
	}, nil
}

// waitForTransfer polls the transaction endpoint until a terminal state or
// the wait budget elapses. Budget exhaustion returns the last known status
// rather than an error, so a slow chain never hangs the caller.
func (c *Client) waitForTransfer(ctx context.Context, txID string, cfg *transferConfig) (*Receipt, error) {
	deadline := time.Now().Add(cfg.waitTimeout)
	lastState := StatusPending

	for time.Now().Before(deadline) {
		status, err := c.apiClient.Transaction(ctx, txID)
		if err != nil {
			return nil, wrapError(err)
		}

		state := strings.ToUpper(status.State)
		switch state {
		case "COMPLETE", "COMPLETED":
			c.log.Info("transfer confirmed",
				slog.String("tx_id", txID),
				slog.String("tx_hash", status.TxHash))
			return &Receipt{
				Success: true,
				Status:  StatusComplete,
				TxID:    txID,
				TxHash:  status.TxHash,
			}, nil
		case "FAILED":
			return nil, &PaymentError{
				Message: fmt.Sprintf("transfer failed: %s", status.ErrorReason),
				TxID:    txID,
			}
		}
		if state != "" {
			lastState = state
		}

		c.log.Debug("transfer still settling",
			slog.String("tx_id", txID),
			slog.String("state", lastState))

		timer := time.NewTimer(cfg.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.log.Info("wait budget elapsed, returning last known status",
		slog.String("tx_id", txID),
		slog.String("state", lastState))

	return &Receipt{Success: true, Status: lastState, TxID: txID}, nil
}

// newIdempotencyKey returns a 64-character hex key from 32 random bytes.
func newIdempotencyKey() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// IntentIdempotencyKey derives a deterministic key from a transfer intent,
// bucketed by the hour of at. Repeated submissions of the same recipient
// and amount within an hour map to one key, letting the server collapse
// them into a single payment. Pass the result via WithIdempotencyKey.
func IntentIdempotencyKey(recipient string, amount float64, at time.Time) string {
	intent := fmt.Sprintf("%s_%s_%s", recipient, formatAmount(amount), at.Format("2006-01-02-15"))
	sum := sha256.Sum256([]byte(intent))
	return hex.EncodeToString(sum[:])
}

// formatAmount serializes an amount as the plain decimal string the API
// expects.
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
