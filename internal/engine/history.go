package engine

import (
	"context"
	"fmt"

	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/models"
)

// History pagination bounds. The default matches the page size the
// account statement consumers request.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// History returns committed transactions newest first, filtered by
// account, kind, and date range, and paged by offset/limit. It never
// mutates state.
func (e *Engine) History(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultHistoryLimit
	}
	if filter.Limit > MaxHistoryLimit {
		filter.Limit = MaxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	txs, err := e.store.ListTransactions(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
	}
	return txs, nil
}
