package modexia

import (
	"context"
	"log/slog"
)

// Identity describes the authenticated agent as reported by the server.
type Identity struct {
	Username      string
	Balance       string
	WalletAddress string
	Email         string
}

// Me fetches the authenticated agent's identity.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	identity, err := c.apiClient.Me(ctx)
	if err != nil {
		return nil, wrapError(err)
	}

	c.log.Debug("identity fetched", slog.String("username", identity.Username))

	return &Identity{
		Username:      identity.Username,
		Balance:       string(identity.Balance),
		WalletAddress: identity.WalletAddress,
		Email:         identity.Email,
	}, nil
}

// RetrieveBalance returns the current wallet balance. The value is
// server-defined; an agent with no recorded balance reports "0".
func (c *Client) RetrieveBalance(ctx context.Context) (string, error) {
	identity, err := c.Me(ctx)
	if err != nil {
		return "", err
	}
	if identity.Balance == "" {
		return "0", nil
	}
	return identity.Balance, nil
}

// GetBalance is an alias for RetrieveBalance.
func (c *Client) GetBalance(ctx context.Context) (string, error) {
	return c.RetrieveBalance(ctx)
}
