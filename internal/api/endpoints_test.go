package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMe_Success(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/v1/user/me" {
			t.Errorf("path = %s, want /api/v1/user/me", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"username": "agent-7", "balance": "12.50", "walletAddress": "0xabc", "email": "agent@example.com"}}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	identity, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}

	if identity.Username != "agent-7" {
		t.Errorf("Username = %s, want agent-7", identity.Username)
	}
	if identity.Balance != "12.50" {
		t.Errorf("Balance = %s, want 12.50", identity.Balance)
	}
	if identity.WalletAddress != "0xabc" {
		t.Errorf("WalletAddress = %s, want 0xabc", identity.WalletAddress)
	}
}

func TestMe_NoEnvelope(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "agent-7", "balance": "3.00"}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	identity, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}

	if identity.Username != "agent-7" {
		t.Errorf("Username = %s, want agent-7", identity.Username)
	}
	if identity.Balance != "3.00" {
		t.Errorf("Balance = %s, want 3.00", identity.Balance)
	}
}

func TestMe_NumericBalance(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"username": "agent-7", "balance": 12.5}}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	identity, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}

	if identity.Balance != "12.5" {
		t.Errorf("Balance = %s, want 12.5", identity.Balance)
	}
}

func TestMe_Unauthorized(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid API key"})
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Me() error = %v, want ErrUnauthorized match", err)
	}
}

func TestPay_Success(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/agent/pay" {
			t.Errorf("path = %s, want /api/v1/agent/pay", r.URL.Path)
		}

		var params PayParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if params.ProviderAddress != "0xdef" {
			t.Errorf("ProviderAddress = %s, want 0xdef", params.ProviderAddress)
		}
		if params.Amount != "1.25" {
			t.Errorf("Amount = %s, want 1.25", params.Amount)
		}
		if params.IdempotencyKey == "" {
			t.Error("IdempotencyKey is empty")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "txId": "tx_001", "queuePosition": 3}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	result, err := client.Pay(context.Background(), PayParams{
		ProviderAddress: "0xdef",
		Amount:          "1.25",
		IdempotencyKey:  "key-123",
	})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if !result.Success {
		t.Error("Success = false, want true")
	}
	if result.TxID != "tx_001" {
		t.Errorf("TxID = %s, want tx_001", result.TxID)
	}
	// Unknown fields ride along for callers that want the raw shape.
	if result.Fields["queuePosition"] == nil {
		t.Error("Fields missing queuePosition")
	}
}

func TestPay_Rejected(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "insufficient funds"}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	result, err := client.Pay(context.Background(), PayParams{
		ProviderAddress: "0xdef",
		Amount:          "1000000",
		IdempotencyKey:  "key-123",
	})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.ErrorReason != "insufficient funds" {
		t.Errorf("ErrorReason = %s, want insufficient funds", result.ErrorReason)
	}
}

func TestPay_BadRequest(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "malformed address"})
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	_, err := client.Pay(context.Background(), PayParams{
		ProviderAddress: "not-an-address",
		Amount:          "1.00",
		IdempotencyKey:  "key-123",
	})
	if err == nil {
		t.Fatal("Pay() should return error for 400 response")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != "malformed address" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "malformed address")
	}
}

func TestTransaction_Success(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/agent/transaction/tx_001" {
			t.Errorf("path = %s, want /api/v1/agent/transaction/tx_001", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"txId": "tx_001", "state": "COMPLETE", "txHash": "0xbeef"}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	status, err := client.Transaction(context.Background(), "tx_001")
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}

	if status.State != "COMPLETE" {
		t.Errorf("State = %s, want COMPLETE", status.State)
	}
	if status.TxHash != "0xbeef" {
		t.Errorf("TxHash = %s, want 0xbeef", status.TxHash)
	}
}

func TestTransaction_EscapesID(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.EscapedPath(), "tx%20001") {
			t.Errorf("escaped path = %s, want tx%%20001 segment", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"txId": "tx 001", "state": "PENDING"}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	if _, err := client.Transaction(context.Background(), "tx 001"); err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
}

func TestTransactions_Success(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/user/transactions" {
			t.Errorf("path = %s, want /api/v1/user/transactions", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "7" {
			t.Errorf("limit = %s, want 7", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"transactions": [
				{"txId": "tx_001", "type": "payment", "amount": "1.25", "state": "COMPLETE", "txHash": "0xbeef"},
				{"txId": "tx_002", "type": "payment", "amount": 0.5, "state": "PENDING"}
			],
			"hasMore": true
		}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	page, err := client.Transactions(context.Background(), 7)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}

	if len(page.Transactions) != 2 {
		t.Fatalf("len(Transactions) = %d, want 2", len(page.Transactions))
	}
	if page.Transactions[0].Amount != "1.25" {
		t.Errorf("Transactions[0].Amount = %s, want 1.25", page.Transactions[0].Amount)
	}
	// Numeric amounts are coerced to their literal string form.
	if page.Transactions[1].Amount != "0.5" {
		t.Errorf("Transactions[1].Amount = %s, want 0.5", page.Transactions[1].Amount)
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
}

func TestTransactions_Empty(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transactions": [], "hasMore": false}`))
	}))
	defer server.Close()

	client, _ := New("mx_test_abc", WithBaseURL(server.URL))
	page, err := client.Transactions(context.Background(), 5)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}

	if len(page.Transactions) != 0 {
		t.Errorf("len(Transactions) = %d, want 0", len(page.Transactions))
	}
	if page.HasMore {
		t.Error("HasMore = true, want false")
	}
}
