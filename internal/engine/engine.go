// Package engine orchestrates money-movement requests against the
// ledger and maintains the append-only transaction history. An
// operation either commits in full, leaving a record behind, or rejects
// with the ledger untouched.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/interfaces"
	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/models"
	"github.com/vectrabank/ledger-engine/internal/models/events"
)

// EventTopic is the topic committed transactions are announced on.
const EventTopic = "transaction_completed"

// Engine processes transaction intents. The ledger performs the locked
// balance mutations; the engine validates inputs, resolves transfer
// destinations, writes history records, and publishes events.
type Engine struct {
	ledger    *ledger.Ledger
	store     interfaces.LedgerStore
	publisher interfaces.EventPublisher // nil disables publishing
	log       *slog.Logger
}

// New builds an Engine. publisher may be nil.
func New(l *ledger.Ledger, store interfaces.LedgerStore, publisher interfaces.EventPublisher, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{ledger: l, store: store, publisher: publisher, log: log}
}

// Deposit credits amount to the account and records the transaction.
func (e *Engine) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return models.Transaction{}, err
	}
	amount = amount.Round(2)

	if _, err := e.ledger.AdjustBalance(ctx, accountID, amount); err != nil {
		return models.Transaction{}, err
	}
	tx, err := e.record(ctx, models.Transaction{
		AccountID:   accountID,
		Kind:        models.KindDeposit,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		e.compensate(ctx, accountID, amount.Neg())
		return models.Transaction{}, err
	}
	return tx, nil
}

// Withdraw debits amount from the account and records the transaction.
// Fails with ErrInsufficientFunds if the balance cannot cover it.
func (e *Engine) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, description string) (models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return models.Transaction{}, err
	}
	amount = amount.Round(2)

	if _, err := e.ledger.AdjustBalance(ctx, accountID, amount.Neg()); err != nil {
		return models.Transaction{}, err
	}
	tx, err := e.record(ctx, models.Transaction{
		AccountID:   accountID,
		Kind:        models.KindWithdrawal,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		e.compensate(ctx, accountID, amount)
		return models.Transaction{}, err
	}
	return tx, nil
}

// InstantTransfer moves amount to the account holding the given number
// with immediate settlement ("pix"). The destination is resolved before
// any balance is touched, so a bad destination never debits the source.
func (e *Engine) InstantTransfer(ctx context.Context, accountID string, amount decimal.Decimal, destinationNumber, description string) (models.Transaction, error) {
	return e.transfer(ctx, models.KindPix, accountID, amount, destinationNumber, description)
}

// AccountTransfer is contractually identical to InstantTransfer and
// differs only in the kind recorded on the resulting transaction.
func (e *Engine) AccountTransfer(ctx context.Context, accountID string, amount decimal.Decimal, destinationNumber, description string) (models.Transaction, error) {
	return e.transfer(ctx, models.KindTransfer, accountID, amount, destinationNumber, description)
}

func (e *Engine) transfer(ctx context.Context, kind models.TransactionKind, accountID string, amount decimal.Decimal, destinationNumber, description string) (models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return models.Transaction{}, err
	}
	amount = amount.Round(2)

	dest, err := e.ledger.FindByNumber(destinationNumber)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return models.Transaction{}, ledger.ErrDestinationNotFound
		}
		return models.Transaction{}, err
	}
	if dest.ID == accountID {
		return models.Transaction{}, ledger.ErrSameAccount
	}

	if err := e.ledger.TransferBalances(ctx, accountID, dest.ID, amount); err != nil {
		return models.Transaction{}, err
	}
	tx, err := e.record(ctx, models.Transaction{
		AccountID:         accountID,
		Kind:              kind,
		Amount:            amount,
		Description:       description,
		DestinationNumber: dest.Number,
	})
	if err != nil {
		e.compensateTransfer(ctx, accountID, dest.ID, amount)
		return models.Transaction{}, err
	}
	return tx, nil
}

// record persists the history entry for an already-committed balance
// mutation and publishes the completion event.
func (e *Engine) record(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	seq, err := e.store.NextTransactionSequence(ctx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
	}
	tx.ID = uuid.New().String()
	tx.Sequence = seq
	tx.CreatedAt = time.Now()

	if err := e.store.SaveTransaction(ctx, tx); err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
	}
	e.publish(tx)
	e.log.Info("transaction committed",
		"transaction_id", tx.ID,
		"account_id", tx.AccountID,
		"kind", string(tx.Kind),
		"amount", tx.Amount.StringFixed(2),
	)
	return tx, nil
}

func (e *Engine) publish(tx models.Transaction) {
	if e.publisher == nil {
		return
	}
	event := events.TransactionCompleted{
		TransactionID:      tx.ID,
		AccountID:          tx.AccountID,
		Kind:               string(tx.Kind),
		Amount:             tx.Amount,
		DestinationAccount: tx.DestinationNumber,
		OccurredAt:         tx.CreatedAt,
	}
	if err := e.publisher.Publish(EventTopic, event); err != nil {
		e.log.Error("event publish failed", "transaction_id", tx.ID, "error", err)
	}
}

// compensate undoes a committed single-account adjustment after its
// history record could not be written.
func (e *Engine) compensate(ctx context.Context, accountID string, delta decimal.Decimal) {
	if _, err := e.ledger.AdjustBalance(ctx, accountID, delta); err != nil {
		e.log.Error("compensation failed",
			"account_id", accountID,
			"delta", delta.StringFixed(2),
			"error", err,
		)
	}
}

func (e *Engine) compensateTransfer(ctx context.Context, sourceID, destID string, amount decimal.Decimal) {
	if err := e.ledger.TransferBalances(ctx, destID, sourceID, amount); err != nil {
		e.log.Error("transfer compensation failed",
			"source_id", sourceID,
			"destination_id", destID,
			"amount", amount.StringFixed(2),
			"error", err,
		)
	}
}

// validAmount accepts strictly positive amounts with at most two
// decimal places.
func validAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ledger.ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ledger.ErrInvalidAmount
	}
	return nil
}
