package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Me fetches the authenticated agent's identity. Doubles as the key
// validation probe: a rejected key surfaces as a 401/403 *Error.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/api/v1/user/me", nil, &raw); err != nil {
		return nil, err
	}

	var identity Identity
	if len(raw) == 0 {
		return &identity, nil
	}
	if err := json.Unmarshal(unwrapData(raw), &identity); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &identity, nil
}

// Pay submits a transfer to the pay endpoint.
func (c *Client) Pay(ctx context.Context, params PayParams) (*PayResult, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPost, "/api/v1/agent/pay", params, &raw); err != nil {
		return nil, err
	}

	var result PayResult
	if len(raw) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode pay response: %w", err)
	}
	if err := json.Unmarshal(raw, &result.Fields); err != nil {
		return nil, fmt.Errorf("decode pay response: %w", err)
	}
	return &result, nil
}

// Transaction fetches the current status of a submitted transfer.
func (c *Client) Transaction(ctx context.Context, txID string) (*TransactionStatus, error) {
	path := fmt.Sprintf("/api/v1/agent/transaction/%s", url.PathEscape(txID))
	var status TransactionStatus
	if err := c.Do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Transactions fetches the most recent transfers for the authenticated agent.
func (c *Client) Transactions(ctx context.Context, limit int) (*TransactionsPage, error) {
	path := "/api/v1/user/transactions?limit=" + strconv.Itoa(limit)
	var page TransactionsPage
	if err := c.Do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
