// Package postgres is the lib/pq-backed LedgerStore implementation.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/interfaces"
	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/models"
)

// Store persists accounts and transactions in Postgres. Balance writes
// happen inside the ledger's per-account lock discipline, so plain
// UPDATEs are sufficient here.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const accountColumns = `id, owner_cpf, account_type, agency, account_number, balance, active, created_at`

func (s *Store) SaveAccount(ctx context.Context, acct models.Account) error {
	const query = `INSERT INTO accounts (id, owner_cpf, account_type, agency, account_number, balance, active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		acct.ID, acct.OwnerCPF, string(acct.Type), acct.Agency,
		acct.Number, acct.Balance, acct.Active, acct.CreatedAt,
	)
	return err
}

func (s *Store) GetAccount(accountID string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return s.scanAccount(s.db.QueryRow(query, accountID))
}

func (s *Store) GetAccountByNumber(number string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return s.scanAccount(s.db.QueryRow(query, number))
}

func (s *Store) scanAccount(row *sql.Row) (models.Account, error) {
	var acct models.Account
	var accountType string
	err := row.Scan(
		&acct.ID, &acct.OwnerCPF, &accountType, &acct.Agency,
		&acct.Number, &acct.Balance, &acct.Active, &acct.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	acct.Type = models.AccountType(accountType)
	return acct, nil
}

func (s *Store) ListAccounts(ownerCPF string) ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE owner_cpf = $1 ORDER BY account_number`
	return s.queryAccounts(query, ownerCPF)
}

func (s *Store) ListAllAccounts() ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_number`
	return s.queryAccounts(query)
}

func (s *Store) queryAccounts(query string, args ...any) ([]models.Account, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var acct models.Account
		var accountType string
		if err := rows.Scan(
			&acct.ID, &acct.OwnerCPF, &accountType, &acct.Agency,
			&acct.Number, &acct.Balance, &acct.Active, &acct.CreatedAt,
		); err != nil {
			return nil, err
		}
		acct.Type = models.AccountType(accountType)
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, balance, accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetActive(ctx context.Context, accountID string, active bool) error {
	const query = `UPDATE accounts SET active = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, active, accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

func (s *Store) NextAccountSequence(ctx context.Context) (int64, error) {
	return s.nextval(ctx, "account_number_seq")
}

func (s *Store) NextTransactionSequence(ctx context.Context) (int64, error) {
	return s.nextval(ctx, "transaction_seq")
}

func (s *Store) nextval(ctx context.Context, sequence string) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `SELECT nextval($1)`, sequence).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `INSERT INTO transactions (id, sequence, account_id, kind, amount, description, destination_number, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		tx.ID, tx.Sequence, tx.AccountID, string(tx.Kind),
		tx.Amount, tx.Description, tx.DestinationNumber, tx.CreatedAt,
	)
	return err
}

// ListTransactions builds the WHERE clause from the non-zero filter
// fields and pages with OFFSET/LIMIT, newest first.
func (s *Store) ListTransactions(filter models.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT id, sequence, account_id, kind, amount, description, destination_number, created_at
	FROM transactions`

	var args []any
	var where []string
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AccountID != "" {
		where = append(where, "account_id = "+arg(filter.AccountID))
	}
	if filter.Kind != "" {
		where = append(where, "kind = "+arg(string(filter.Kind)))
	}
	if !filter.From.IsZero() {
		where = append(where, "created_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "created_at <= "+arg(filter.To))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY sequence DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var tx models.Transaction
		var kind string
		if err := rows.Scan(
			&tx.ID, &tx.Sequence, &tx.AccountID, &kind,
			&tx.Amount, &tx.Description, &tx.DestinationNumber, &tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		tx.Kind = models.TransactionKind(kind)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
