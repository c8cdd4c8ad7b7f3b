package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/models"
)

// LedgerStore is the persistence contract for accounts and transaction
// records. Implementations must be safe for concurrent use; the
// per-account serialization of balance mutations is the ledger's
// responsibility, not the store's.
type LedgerStore interface {
	SaveAccount(ctx context.Context, acct models.Account) error
	GetAccount(accountID string) (models.Account, error)
	GetAccountByNumber(number string) (models.Account, error)
	ListAccounts(ownerCPF string) ([]models.Account, error)
	ListAllAccounts() ([]models.Account, error)

	// SetBalance and SetActive are raw writes; callers hold the
	// account's exclusive lock around the read-modify-write cycle.
	SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	SetActive(ctx context.Context, accountID string, active bool) error

	NextAccountSequence(ctx context.Context) (int64, error)
	NextTransactionSequence(ctx context.Context) (int64, error)

	SaveTransaction(ctx context.Context, tx models.Transaction) error
	ListTransactions(filter models.TransactionFilter) ([]models.Transaction, error)
}
