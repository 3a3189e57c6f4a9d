package api

import "encoding/json"

// flexString decodes JSON strings and bare numbers alike. The server is
// not consistent about which one amount-like fields carry.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	*s = flexString(data)
	return nil
}

// Identity represents the authenticated agent returned by /api/v1/user/me.
type Identity struct {
	Username      string     `json:"username"`
	Balance       flexString `json:"balance"`
	WalletAddress string     `json:"walletAddress"`
	Email         string     `json:"email"`
}

// PayParams represents the POST /api/v1/agent/pay request body.
type PayParams struct {
	ProviderAddress string `json:"providerAddress"`
	Amount          string `json:"amount"`
	IdempotencyKey  string `json:"idempotencyKey"`
}

// PayResult represents the pay endpoint response. Fields holds the full
// decoded body so callers can pass the server's shape through untouched.
type PayResult struct {
	Success     bool   `json:"success"`
	TxID        string `json:"txId"`
	ErrorReason string `json:"error"`

	Fields map[string]interface{} `json:"-"`
}

// TransactionStatus represents GET /api/v1/agent/transaction/{txId}.
type TransactionStatus struct {
	TxID        string `json:"txId"`
	State       string `json:"state"`
	TxHash      string `json:"txHash"`
	ErrorReason string `json:"errorReason"`
}

// TransactionItem is one entry of the transaction history.
type TransactionItem struct {
	TxID            string     `json:"txId"`
	Type            string     `json:"type"`
	Amount          flexString `json:"amount"`
	State           string     `json:"state"`
	CreatedAt       string     `json:"createdAt"`
	ProviderAddress string     `json:"providerAddress"`
	TxHash          string     `json:"txHash"`
}

// TransactionsPage represents GET /api/v1/user/transactions.
type TransactionsPage struct {
	Transactions []TransactionItem `json:"transactions"`
	HasMore      bool              `json:"hasMore"`
}

// unwrapData returns the "data" member of an envelope body, or the body
// itself when no envelope is present. Several endpoints wrap their payload
// this way and the server does not guarantee either shape.
func unwrapData(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return envelope.Data
	}
	return raw
}
