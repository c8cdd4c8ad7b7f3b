// Package models holds the domain types shared across the engine,
// ledger, and storage layers.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType identifies the product tier an account was opened under.
type AccountType string

const (
	TypeChecking AccountType = "checking"
	TypeSavings  AccountType = "savings"
	TypePayroll  AccountType = "payroll"
	TypeStudent  AccountType = "student"
	TypeBusiness AccountType = "business"
	TypePremium  AccountType = "premium"
)

// Account is a customer account and its current balance. Everything but
// Balance and Active is immutable after creation; Balance only changes
// through the ledger's locked adjustment paths.
type Account struct {
	ID        string          `json:"id"`
	OwnerCPF  string          `json:"owner_cpf"`
	Type      AccountType     `json:"account_type"`
	Agency    string          `json:"agency"`
	Number    string          `json:"account_number"` // canonical 11-digit zero-padded form
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}
