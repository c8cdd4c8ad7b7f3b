// Package memory is the in-memory LedgerStore implementation, used by
// tests and single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/interfaces"
	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/models"
)

// Store keeps accounts and transactions in maps guarded by a single
// mutex. Reads hand out value copies, so callers can never alias
// internal state; a read that starts after a write returned always
// sees the committed value.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]models.Account // keyed by account ID
	byNumber     map[string]string         // account number -> account ID
	transactions []models.Transaction

	accountSeq     atomic.Int64
	transactionSeq atomic.Int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		byNumber: make(map[string]string),
	}
}

func (s *Store) SaveAccount(ctx context.Context, acct models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[acct.ID] = acct
	s.byNumber[acct.Number] = acct.ID
	return nil
}

func (s *Store) GetAccount(accountID string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	return acct, nil
}

func (s *Store) GetAccountByNumber(number string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byNumber[number]
	if !ok {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) ListAccounts(ownerCPF string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Account, 0)
	for _, acct := range s.accounts {
		if acct.OwnerCPF == ownerCPF {
			out = append(out, acct)
		}
	}
	sortByNumber(out)
	return out, nil
}

func (s *Store) ListAllAccounts() ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, acct)
	}
	sortByNumber(out)
	return out, nil
}

func (s *Store) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	acct.Balance = balance
	// write back under the stored ID, never the caller's string: map
	// assignment rebinds the key, and the caller's string may alias a
	// buffer it does not own
	s.accounts[acct.ID] = acct
	return nil
}

func (s *Store) SetActive(ctx context.Context, accountID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	acct.Active = active
	s.accounts[acct.ID] = acct
	return nil
}

func (s *Store) NextAccountSequence(ctx context.Context) (int64, error) {
	return s.accountSeq.Add(1), nil
}

func (s *Store) NextTransactionSequence(ctx context.Context) (int64, error) {
	return s.transactionSeq.Add(1), nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	return nil
}

// ListTransactions returns matching records newest first, sliced by
// offset/limit. The result is a fresh slice of value copies.
func (s *Store) ListTransactions(filter models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Transaction, 0)
	for _, tx := range s.transactions {
		if matches(tx, filter) {
			matched = append(matched, tx)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Sequence > matched[j].Sequence })

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []models.Transaction{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]models.Transaction, len(matched))
	copy(out, matched)
	return out, nil
}

func matches(tx models.Transaction, f models.TransactionFilter) bool {
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if f.Kind != "" && tx.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && tx.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.CreatedAt.After(f.To) {
		return false
	}
	return true
}

func sortByNumber(accts []models.Account) {
	sort.Slice(accts, func(i, j int) bool { return accts[i].Number < accts[j].Number })
}

// Compile-time check: Store implements the LedgerStore interface.
var _ interfaces.LedgerStore = (*Store)(nil)
