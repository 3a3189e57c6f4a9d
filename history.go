package modexia

import "context"

// defaultHistoryLimit mirrors the server's default page size.
const defaultHistoryLimit = 5

// TransactionHistoryItem is one transfer in the agent's history.
type TransactionHistoryItem struct {
	TxID   string
	Type   string
	Amount string
	State  string
	// CreatedAt is passed through as the server sent it; the timestamp
	// format is server-defined.
	CreatedAt       string
	ProviderAddress string
	TxHash          string
}

// TransactionHistory is a page of the agent's most recent transfers.
type TransactionHistory struct {
	Transactions []TransactionHistoryItem
	// HasMore reports that older transactions exist beyond this page.
	HasMore bool
}

// History fetches the agent's most recent transactions, newest first.
// A non-positive limit requests the default page size.
func (c *Client) History(ctx context.Context, limit int) (*TransactionHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	page, err := c.apiClient.Transactions(ctx, limit)
	if err != nil {
		return nil, wrapError(err)
	}

	items := make([]TransactionHistoryItem, 0, len(page.Transactions))
	for _, t := range page.Transactions {
		amount := string(t.Amount)
		if amount == "" {
			amount = "0"
		}
		items = append(items, TransactionHistoryItem{
			TxID:            t.TxID,
			Type:            t.Type,
			Amount:          amount,
			State:           t.State,
			CreatedAt:       t.CreatedAt,
			ProviderAddress: t.ProviderAddress,
			TxHash:          t.TxHash,
		})
	}

	return &TransactionHistory{
		Transactions: items,
		HasMore:      page.HasMore,
	}, nil
}
