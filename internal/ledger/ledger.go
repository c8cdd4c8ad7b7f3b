// Package ledger owns the authoritative account set. Every balance
// mutation funnels through here under an exclusive per-account lock, so
// a committed operation is always observed whole.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/identity"
	"github.com/vectrabank/ledger-engine/internal/interfaces"
	"github.com/vectrabank/ledger-engine/internal/models"
	"github.com/vectrabank/ledger-engine/internal/policy"
)

// DefaultAgency is the single agency all accounts are issued under.
const DefaultAgency = "0001"

// accountNumberWidth is the canonical zero-padded width of an account
// number.
const accountNumberWidth = 11

// Ledger mediates all account state changes. It holds one mutex per
// account; the registry map itself is guarded by mapMu.
type Ledger struct {
	store interfaces.LedgerStore
	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

// New builds a Ledger on top of any LedgerStore implementation.
func New(store interfaces.LedgerStore) *Ledger {
	return &Ledger{
		store: store,
		muMap: make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// CreateAccount validates the owner identifier and the eligibility
// rules for the requested type, then persists a new active account
// holding the opening balance. The account number is sequential and
// zero-padded to its canonical width.
func (l *Ledger) CreateAccount(ctx context.Context, ownerCPF string, accountType models.AccountType, birthDate time.Time, openingBalance decimal.Decimal) (models.Account, error) {
	if !identity.ValidateCPF(ownerCPF) {
		return models.Account{}, ErrInvalidIdentifier
	}
	if openingBalance.IsNegative() {
		return models.Account{}, ErrInvalidAmount
	}
	if err := policy.Eligible(accountType, birthDate, openingBalance); err != nil {
		return models.Account{}, err
	}

	seq, err := l.store.NextAccountSequence(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	acct := models.Account{
		ID:        uuid.New().String(),
		OwnerCPF:  identity.CleanCPF(ownerCPF),
		Type:      accountType,
		Agency:    DefaultAgency,
		Number:    fmt.Sprintf("%0*d", accountNumberWidth, seq),
		Balance:   openingBalance.Round(2),
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := l.store.SaveAccount(ctx, acct); err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return acct, nil
}

// GetAccount returns the current snapshot of an account.
func (l *Ledger) GetAccount(accountID string) (models.Account, error) {
	return l.store.GetAccount(accountID)
}

// FindByNumber resolves an account by its canonical number. Used to
// resolve transfer destinations.
func (l *Ledger) FindByNumber(number string) (models.Account, error) {
	return l.store.GetAccountByNumber(number)
}

// ListAccounts enumerates the accounts held by one owner.
func (l *Ledger) ListAccounts(ownerCPF string) ([]models.Account, error) {
	return l.store.ListAccounts(identity.CleanCPF(ownerCPF))
}

// ListAll enumerates every account.
func (l *Ledger) ListAll() ([]models.Account, error) {
	return l.store.ListAllAccounts()
}

// AdjustBalance applies delta (positive or negative) to one account
// under its exclusive lock. It is the sole single-account mutation
// path. An inactive account or a negative result rejects the whole
// call with no effect.
func (l *Ledger) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}

	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	acct, err := l.store.GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !acct.Active {
		return decimal.Zero, ErrAccountInactive
	}

	next := acct.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, ErrInsufficientFunds
	}
	if err := l.store.SetBalance(ctx, accountID, next); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return next, nil
}

// TransferBalances moves amount from source to dest inside a single
// critical section. The two locks are taken in ascending account-ID
// order regardless of direction, so two opposite transfers cannot
// deadlock. Both accounts are validated before either balance changes;
// if the credit write fails after the debit committed, the debit is
// rolled back while the locks are still held, so no observer ever sees
// the intermediate state.
func (l *Ledger) TransferBalances(ctx context.Context, sourceID, destID string, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if sourceID == destID {
		return ErrSameAccount
	}

	first, second := l.accountLock(sourceID), l.accountLock(destID)
	if destID < sourceID {
		first, second = second, first
	}
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	source, err := l.store.GetAccount(sourceID)
	if err != nil {
		return err
	}
	dest, err := l.store.GetAccount(destID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrDestinationNotFound
		}
		return err
	}
	if !source.Active || !dest.Active {
		return ErrAccountInactive
	}

	debited := source.Balance.Sub(amount)
	if debited.IsNegative() {
		return ErrInsufficientFunds
	}

	if err := l.store.SetBalance(ctx, sourceID, debited); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := l.store.SetBalance(ctx, destID, dest.Balance.Add(amount)); err != nil {
		if rbErr := l.store.SetBalance(ctx, sourceID, source.Balance); rbErr != nil {
			return fmt.Errorf("%w: credit failed (%v), debit rollback failed (%v)", ErrStoreUnavailable, err, rbErr)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SetActive toggles the account's active flag under its lock, so a
// deactivation never races an in-flight adjustment.
func (l *Ledger) SetActive(ctx context.Context, accountID string, active bool) (models.Account, error) {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	acct, err := l.store.GetAccount(accountID)
	if err != nil {
		return models.Account{}, err
	}
	if acct.Active == active {
		return acct, nil
	}
	if err := l.store.SetActive(ctx, accountID, active); err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	acct.Active = active
	return acct, nil
}
