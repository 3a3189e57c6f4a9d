package webhook

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the kind of webhook event.
type EventType string

// Event types delivered by Modexia.
const (
	// EventTransferCompleted fires when a transfer settles on-chain.
	EventTransferCompleted EventType = "transfer.completed"
	// EventTransferFailed fires when a transfer terminally fails.
	EventTransferFailed EventType = "transfer.failed"
	// EventBalanceLow fires when the wallet balance drops below the
	// threshold configured in the dashboard.
	EventBalanceLow EventType = "balance.low"
)

// Event is a verified webhook delivery. Data holds the type-specific
// payload; use Transfer or Balance to decode it.
type Event struct {
	// ID uniquely identifies the event across redeliveries. Receivers
	// can use it to deduplicate.
	ID string `json:"eventId"`
	// Type is the event kind, such as "transfer.completed".
	Type EventType `json:"type"`
	// CreatedAt is when the event occurred.
	CreatedAt time.Time `json:"createdAt"`
	// Data is the raw type-specific payload.
	Data json.RawMessage `json:"data"`
}

// TransferEvent is the payload of transfer.completed and transfer.failed
// events.
type TransferEvent struct {
	TxID            string `json:"txId"`
	State           string `json:"state"`
	Amount          string `json:"amount"`
	ProviderAddress string `json:"providerAddress"`
	TxHash          string `json:"txHash"`
	ErrorReason     string `json:"errorReason"`
}

// BalanceEvent is the payload of balance.low events.
type BalanceEvent struct {
	Balance   string `json:"balance"`
	Threshold string `json:"threshold"`
}

// Transfer decodes the payload of a transfer event. It returns an error
// for other event types.
func (e *Event) Transfer() (*TransferEvent, error) {
	if e.Type != EventTransferCompleted && e.Type != EventTransferFailed {
		return nil, fmt.Errorf("event type %q carries no transfer payload", e.Type)
	}
	var payload TransferEvent
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode transfer payload: %w", err)
	}
	return &payload, nil
}

// Balance decodes the payload of a balance.low event. It returns an error
// for other event types.
func (e *Event) Balance() (*BalanceEvent, error) {
	if e.Type != EventBalanceLow {
		return nil, fmt.Errorf("event type %q carries no balance payload", e.Type)
	}
	var payload BalanceEvent
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode balance payload: %w", err)
	}
	return &payload, nil
}

// parseEvent decodes a verified delivery body.
func parseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &event, nil
}
