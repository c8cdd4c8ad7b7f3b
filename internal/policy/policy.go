// Package policy holds the account-type eligibility rules. The rule
// table here is the single source of truth: account opening and any
// future type-upgrade path both consult it.
package policy

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/models"
)

var (
	// ErrIneligibleAge means the applicant is below the minimum age
	// for the requested account type.
	ErrIneligibleAge = errors.New("applicant below minimum age for account type")

	// ErrIneligibleBalance means the proposed opening balance is below
	// the floor for the requested account type.
	ErrIneligibleBalance = errors.New("opening balance below minimum for account type")

	// ErrUnknownAccountType means the requested type is not in the
	// rule table.
	ErrUnknownAccountType = errors.New("unknown account type")
)

// PremiumMinimumBalance is the balance floor for premium accounts. It
// is checked at the moment the type is granted, not continuously.
var PremiumMinimumBalance = decimal.NewFromInt(50000)

type rule struct {
	minAge     int
	minBalance decimal.Decimal // zero means no floor
}

var rules = map[models.AccountType]rule{
	models.TypeChecking: {minAge: 13},
	models.TypeSavings:  {minAge: 13},
	models.TypePayroll:  {minAge: 16},
	models.TypeStudent:  {minAge: 16},
	models.TypeBusiness: {minAge: 21},
	models.TypePremium:  {minAge: 18, minBalance: PremiumMinimumBalance},
}

// Eligible checks whether an applicant born on birthDate may open an
// account of the given type with the proposed opening balance.
func Eligible(accountType models.AccountType, birthDate time.Time, openingBalance decimal.Decimal) error {
	return EligibleAt(accountType, birthDate, openingBalance, time.Now())
}

// EligibleAt is Eligible with an explicit reference time.
func EligibleAt(accountType models.AccountType, birthDate time.Time, openingBalance decimal.Decimal, now time.Time) error {
	r, ok := rules[accountType]
	if !ok {
		return ErrUnknownAccountType
	}
	if Age(birthDate, now) < r.minAge {
		return ErrIneligibleAge
	}
	if !r.minBalance.IsZero() && openingBalance.LessThan(r.minBalance) {
		return ErrIneligibleBalance
	}
	return nil
}

// Age returns full calendar years between birthDate and now. An
// applicant whose birthday falls exactly on the reference day has
// attained the new age.
func Age(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	return years
}
