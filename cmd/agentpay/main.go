// Command agentpay is a small operational CLI over the Modexia client.
// It prints JSON to stdout so output can be piped into other tooling.
//
// Usage:
//
//	agentpay balance
//	agentpay transfer <recipient> <amount>
//	agentpay history [limit]
//	agentpay fetch <url>
//
// The client is configured from MODEXIA_API_KEY and, optionally,
// MODEXIA_URL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	modexia "github.com/modexia/client-go"
)

// Config carries the process streams so commands can be tested without
// touching os.Stdin and friends.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// payClient is the slice of the Modexia client the commands use.
type payClient interface {
	Me(ctx context.Context) (*modexia.Identity, error)
	Transfer(ctx context.Context, recipient string, amount float64, opts ...modexia.TransferOption) (*modexia.Receipt, error)
	History(ctx context.Context, limit int) (*modexia.TransactionHistory, error)
	SmartFetch(ctx context.Context, rawURL string, opts ...modexia.FetchOption) (*http.Response, error)
}

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return errors.New("usage: agentpay <command> [args]")
	}

	command := args[1]
	switch command {
	case "balance", "transfer", "history", "fetch":
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := newClientFromEnv()
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	switch command {
	case "balance":
		return runBalance(ctx, client, cfg)
	case "transfer":
		if len(args) < 4 {
			return errors.New("usage: agentpay transfer <recipient> <amount>")
		}
		amount, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		return runTransfer(ctx, client, cfg, args[2], amount)
	case "history":
		limit := 0
		if len(args) > 2 {
			limit, err = strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("parse limit: %w", err)
			}
		}
		return runHistory(ctx, client, cfg, limit)
	default:
		if len(args) < 3 {
			return errors.New("usage: agentpay fetch <url>")
		}
		return runFetch(ctx, client, cfg, args[2])
	}
}

func newClientFromEnv() (*modexia.Client, error) {
	var opts []modexia.Option
	if url := os.Getenv("MODEXIA_URL"); url != "" {
		opts = append(opts, modexia.WithBaseURL(url))
	}
	return modexia.New(os.Getenv("MODEXIA_API_KEY"), opts...)
}

// BalanceOutput is the JSON printed by the balance command.
type BalanceOutput struct {
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	Balance       string `json:"balance"`
}

// ReceiptOutput is the JSON printed by the transfer command.
type ReceiptOutput struct {
	TxID   string `json:"txId"`
	Status string `json:"status"`
	TxHash string `json:"txHash,omitempty"`
}

// TransactionOutput is one entry of the history command's JSON.
type TransactionOutput struct {
	TxID      string `json:"txId"`
	Type      string `json:"type,omitempty"`
	Amount    string `json:"amount"`
	State     string `json:"state"`
	CreatedAt string `json:"createdAt,omitempty"`
	TxHash    string `json:"txHash,omitempty"`
}

// HistoryOutput is the JSON printed by the history command.
type HistoryOutput struct {
	Transactions []TransactionOutput `json:"transactions"`
	HasMore      bool                `json:"hasMore"`
}

func runBalance(ctx context.Context, client payClient, cfg *Config) error {
	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch identity: %w", err)
	}

	output := BalanceOutput{
		Username:      me.Username,
		WalletAddress: me.WalletAddress,
		Balance:       me.Balance,
	}
	if err := json.NewEncoder(cfg.Stdout).Encode(output); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func runTransfer(ctx context.Context, client payClient, cfg *Config, recipient string, amount float64) error {
	receipt, err := client.Transfer(ctx, recipient, amount)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	output := ReceiptOutput{
		TxID:   receipt.TxID,
		Status: receipt.Status,
		TxHash: receipt.TxHash,
	}
	if err := json.NewEncoder(cfg.Stdout).Encode(output); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func runHistory(ctx context.Context, client payClient, cfg *Config, limit int) error {
	history, err := client.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	output := HistoryOutput{
		Transactions: make([]TransactionOutput, 0, len(history.Transactions)),
		HasMore:      history.HasMore,
	}
	for _, tx := range history.Transactions {
		output.Transactions = append(output.Transactions, TransactionOutput{
			TxID:      tx.TxID,
			Type:      tx.Type,
			Amount:    tx.Amount,
			State:     tx.State,
			CreatedAt: tx.CreatedAt,
			TxHash:    tx.TxHash,
		})
	}
	if err := json.NewEncoder(cfg.Stdout).Encode(output); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func runFetch(ctx context.Context, client payClient, cfg *Config, url string) error {
	resp, err := client.SmartFetch(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	fmt.Fprintf(cfg.Stderr, "HTTP %d\n", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("fetch: HTTP %d", resp.StatusCode)
	}
	if _, err := io.Copy(cfg.Stdout, resp.Body); err != nil {
		return fmt.Errorf("copy body: %w", err)
	}
	return nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
