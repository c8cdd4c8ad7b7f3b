package ledger

import "errors"

// Domain errors. Each is a terminal result for the attempted operation;
// the API layer maps them to HTTP status codes.
var (
	// ErrInvalidIdentifier rejects an owner CPF that fails the
	// checksum.
	ErrInvalidIdentifier = errors.New("invalid owner identifier")

	// ErrAccountNotFound means the account ID or number resolved to
	// nothing.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDestinationNotFound means a transfer destination number
	// resolved to nothing. The source account is untouched.
	ErrDestinationNotFound = errors.New("destination account not found")

	// ErrAccountInactive rejects any mutation on a deactivated
	// account.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInvalidAmount rejects non-positive or malformed amounts. An
	// amount of exactly zero is an error, never a no-op.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds rejects a debit that would drive the
	// balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount rejects a transfer whose destination resolves to
	// the source account.
	ErrSameAccount = errors.New("source and destination are the same account")

	// ErrStoreUnavailable wraps infrastructure failures from the
	// backing store. Any partial effect has been rolled back.
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)
