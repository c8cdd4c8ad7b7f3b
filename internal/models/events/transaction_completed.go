// Package events defines the payloads the engine announces to
// downstream consumers after a commit.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted once per committed transaction, after
// the balance mutation and the history record are both durable.
type TransactionCompleted struct {
	TransactionID      string          `json:"transaction_id"`
	AccountID          string          `json:"account_id"`
	Kind               string          `json:"kind"`
	Amount             decimal.Decimal `json:"amount"`
	DestinationAccount string          `json:"destination_account,omitempty"`
	OccurredAt         time.Time       `json:"occurred_at"`
}
