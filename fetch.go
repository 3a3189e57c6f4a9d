package modexia

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// A 402 challenge advertises its price and payee as quoted pairs in the
// WWW-Authenticate header.
var (
	paywallAmountRe      = regexp.MustCompile(`amount="([^"]+)"`)
	paywallDestinationRe = regexp.MustCompile(`destination="([^"]+)"`)
)

// SmartFetch performs a GET through the client's retry policy, settling
// HTTP 402 paywalls along the way.
//
// Relative URLs resolve against the client's base URL and carry the
// Modexia key; absolute URLs are fetched without it, so the key never
// leaks to third-party hosts. When a response is 402 with a parseable
// WWW-Authenticate challenge, the client pays the advertised amount via
// Transfer (bounded by WithMaxAutoPay) and repeats the request once with
// Authorization and X-Payment-Proof headers carrying the transaction ID.
// A challenge that cannot be parsed, or is priced above the cap, returns
// the 402 response untouched.
//
// Whatever status the server settles on is returned as-is; the caller
// owns resp.Body. Transport failures surface as *NetworkError.
func (c *Client) SmartFetch(ctx context.Context, rawURL string, opts ...FetchOption) (*http.Response, error) {
	cfg := &fetchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	absolute := strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
	target := rawURL
	if !absolute {
		target = c.baseURL + rawURL
	}

	resp, err := c.apiClient.Fetch(ctx, target, cfg.query, cfg.header, !absolute)
	if err != nil {
		return nil, wrapError(err)
	}

	if resp.StatusCode != http.StatusPaymentRequired || cfg.noAutoPay {
		return resp, nil
	}

	receipt, err := c.negotiatePaywall(ctx, resp, cfg)
	if err != nil {
		return nil, err
	}
	if receipt == nil || !receipt.Success {
		return resp, nil
	}

	// The challenge response is done with; from here on the paid retry is
	// the caller's response.
	discardBody(resp)

	if cfg.header == nil {
		cfg.header = make(http.Header)
	}
	cfg.header.Set("Authorization", "L402 "+receipt.TxID)
	cfg.header.Set("X-Payment-Proof", receipt.TxID)

	c.log.Info("paywall settled, repeating request",
		slog.String("url", rawURL),
		slog.String("tx_id", receipt.TxID))

	paid, err := c.apiClient.Fetch(ctx, target, cfg.query, cfg.header, !absolute)
	if err != nil {
		return nil, wrapError(err)
	}
	return paid, nil
}

// negotiatePaywall parses a 402 challenge and pays it. An unparseable or
// over-cap challenge returns (nil, nil) so the caller can hand the raw
// 402 back; only a failed payment is an error.
func (c *Client) negotiatePaywall(ctx context.Context, resp *http.Response, cfg *fetchConfig) (*Receipt, error) {
	challenge := resp.Header.Get("WWW-Authenticate")
	amountMatch := paywallAmountRe.FindStringSubmatch(challenge)
	destMatch := paywallDestinationRe.FindStringSubmatch(challenge)
	if amountMatch == nil || destMatch == nil {
		return nil, nil
	}

	amount, err := strconv.ParseFloat(amountMatch[1], 64)
	if err != nil || amount <= 0 {
		return nil, nil
	}

	if cfg.maxAutoPay > 0 && amount > cfg.maxAutoPay {
		c.log.Info("paywall price exceeds auto-pay cap",
			slog.Float64("amount", amount),
			slog.Float64("cap", cfg.maxAutoPay))
		return nil, nil
	}

	c.log.Info("settling paywall",
		slog.Float64("amount", amount),
		slog.String("destination", destMatch[1]))

	return c.Transfer(ctx, destMatch[1], amount)
}

// discardBody drains and closes a response body so its connection can be
// reused.
func discardBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
