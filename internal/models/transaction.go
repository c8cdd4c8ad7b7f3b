package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tags the kind of money movement a record represents.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindPix        TransactionKind = "pix"
	KindTransfer   TransactionKind = "transfer"
)

// Transaction is an immutable record of a committed money movement.
// The history is append-only: rejected attempts never produce a record,
// and existing records are never updated or deleted.
type Transaction struct {
	ID                string          `json:"id"`
	Sequence          int64           `json:"sequence"` // store-issued creation order
	AccountID         string          `json:"account_id"`
	Kind              TransactionKind `json:"kind"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
	DestinationNumber string          `json:"destination_account,omitempty"` // set for pix/transfer only
	CreatedAt         time.Time       `json:"created_at"`
}

// TransactionFilter narrows and pages a history query. Zero values mean
// "no constraint" for the filter fields.
type TransactionFilter struct {
	AccountID string
	Kind      TransactionKind
	From      time.Time
	To        time.Time
	Offset    int
	Limit     int
}
