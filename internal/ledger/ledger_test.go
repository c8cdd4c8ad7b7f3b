package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/models"
	"github.com/vectrabank/ledger-engine/internal/policy"
	"github.com/vectrabank/ledger-engine/internal/storage/memory"
)

const ownerCPF = "52998224725"

var adultBirthDate = time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC)

func newLedger() *ledger.Ledger {
	return ledger.New(memory.NewStore())
}

func mustCreate(t *testing.T, l *ledger.Ledger, balance string) models.Account {
	t.Helper()
	acct, err := l.CreateAccount(context.Background(), ownerCPF, models.TypeChecking, adultBirthDate, decimal.RequireFromString(balance))
	require.NoError(t, err)
	return acct
}

func TestCreateAccount(t *testing.T) {
	l := newLedger()

	acct, err := l.CreateAccount(context.Background(), "529.982.247-25", models.TypeChecking, adultBirthDate, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "52998224725", acct.OwnerCPF) // stored clean
	assert.Equal(t, ledger.DefaultAgency, acct.Agency)
	assert.Equal(t, "00000000001", acct.Number)
	assert.True(t, acct.Active)
	assert.True(t, acct.Balance.Equal(decimal.RequireFromString("100.00")))

	second, err := l.CreateAccount(context.Background(), ownerCPF, models.TypeSavings, adultBirthDate, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "00000000002", second.Number)
}

func TestCreateAccount_Rejections(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	_, err := l.CreateAccount(ctx, "12345678900", models.TypeChecking, adultBirthDate, decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrInvalidIdentifier)

	_, err = l.CreateAccount(ctx, ownerCPF, models.TypeChecking, adultBirthDate, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	// twelve years old: under every minimum age
	young := time.Now().AddDate(-12, 0, 0)
	_, err = l.CreateAccount(ctx, ownerCPF, models.TypeChecking, young, decimal.Zero)
	assert.ErrorIs(t, err, policy.ErrIneligibleAge)

	_, err = l.CreateAccount(ctx, ownerCPF, models.TypePremium, adultBirthDate, decimal.RequireFromString("49999.99"))
	assert.ErrorIs(t, err, policy.ErrIneligibleBalance)

	_, err = l.CreateAccount(ctx, ownerCPF, models.TypePremium, adultBirthDate, decimal.RequireFromString("50000.00"))
	assert.NoError(t, err)

	_, err = l.CreateAccount(ctx, ownerCPF, models.AccountType("platinum"), adultBirthDate, decimal.Zero)
	assert.ErrorIs(t, err, policy.ErrUnknownAccountType)
}

func TestGetAndFindByNumber(t *testing.T) {
	l := newLedger()
	acct := mustCreate(t, l, "10.00")

	got, err := l.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	byNumber, err := l.FindByNumber(acct.Number)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byNumber.ID)

	_, err = l.GetAccount("missing")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	_, err = l.FindByNumber("99999999999")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestListAccounts(t *testing.T) {
	l := newLedger()
	mustCreate(t, l, "1.00")
	mustCreate(t, l, "2.00")

	mine, err := l.ListAccounts("529.982.247-25") // formatted input still matches
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	other, err := l.ListAccounts("11144477735")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAdjustBalance(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	acct := mustCreate(t, l, "100.00")

	newBalance, err := l.AdjustBalance(ctx, acct.ID, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.True(t, newBalance.Equal(decimal.RequireFromString("150.00")))

	// withdraw down to exactly zero is allowed
	newBalance, err = l.AdjustBalance(ctx, acct.ID, decimal.RequireFromString("-150.00"))
	require.NoError(t, err)
	assert.True(t, newBalance.IsZero())

	// one cent past the balance is not
	_, err = l.AdjustBalance(ctx, acct.ID, decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	_, err = l.AdjustBalance(ctx, acct.ID, decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = l.AdjustBalance(ctx, "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestAdjustBalance_InactiveAccount(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	acct := mustCreate(t, l, "100.00")

	_, err := l.SetActive(ctx, acct.ID, false)
	require.NoError(t, err)

	_, err = l.AdjustBalance(ctx, acct.ID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ledger.ErrAccountInactive)

	// reactivated accounts accept mutations again
	_, err = l.SetActive(ctx, acct.ID, true)
	require.NoError(t, err)
	_, err = l.AdjustBalance(ctx, acct.ID, decimal.NewFromInt(10))
	assert.NoError(t, err)
}

func TestTransferBalances(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	a := mustCreate(t, l, "100.00")
	b := mustCreate(t, l, "30.00")

	require.NoError(t, l.TransferBalances(ctx, a.ID, b.ID, decimal.RequireFromString("50.00")))

	aAfter, err := l.GetAccount(a.ID)
	require.NoError(t, err)
	bAfter, err := l.GetAccount(b.ID)
	require.NoError(t, err)

	assert.True(t, aAfter.Balance.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, bAfter.Balance.Equal(decimal.RequireFromString("80.00")))
	// conservation
	assert.True(t, aAfter.Balance.Add(bAfter.Balance).Equal(decimal.RequireFromString("130.00")))
}

func TestTransferBalances_Rejections(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	a := mustCreate(t, l, "100.00")
	b := mustCreate(t, l, "0.00")

	assert.ErrorIs(t, l.TransferBalances(ctx, a.ID, a.ID, decimal.NewFromInt(1)), ledger.ErrSameAccount)
	assert.ErrorIs(t, l.TransferBalances(ctx, a.ID, b.ID, decimal.Zero), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, l.TransferBalances(ctx, a.ID, b.ID, decimal.NewFromInt(-5)), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, l.TransferBalances(ctx, a.ID, b.ID, decimal.RequireFromString("100.01")), ledger.ErrInsufficientFunds)
	assert.ErrorIs(t, l.TransferBalances(ctx, a.ID, "missing", decimal.NewFromInt(1)), ledger.ErrDestinationNotFound)

	_, err := l.SetActive(ctx, b.ID, false)
	require.NoError(t, err)
	assert.ErrorIs(t, l.TransferBalances(ctx, a.ID, b.ID, decimal.NewFromInt(1)), ledger.ErrAccountInactive)

	// nothing was debited by any rejected attempt
	aAfter, err := l.GetAccount(a.ID)
	require.NoError(t, err)
	assert.True(t, aAfter.Balance.Equal(decimal.RequireFromString("100.00")))
}

func TestConcurrentWithdrawals_ExactlyOneCommits(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	acct := mustCreate(t, l, "100.00")

	amount := decimal.RequireFromString("60.00")
	results := make(chan error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AdjustBalance(ctx, acct.ID, amount.Neg())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var failures int
	for err := range results {
		if err != nil {
			assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	after, err := l.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.RequireFromString("40.00")))
}

func TestConcurrentOppositeTransfers_NoDeadlockAndConserved(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	a := mustCreate(t, l, "1000.00")
	b := mustCreate(t, l, "1000.00")

	one := decimal.NewFromInt(1)
	const rounds = 200

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = l.TransferBalances(ctx, a.ID, b.ID, one)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = l.TransferBalances(ctx, b.ID, a.ID, one)
		}
	}()
	wg.Wait()

	aAfter, err := l.GetAccount(a.ID)
	require.NoError(t, err)
	bAfter, err := l.GetAccount(b.ID)
	require.NoError(t, err)

	assert.True(t, aAfter.Balance.Add(bAfter.Balance).Equal(decimal.NewFromInt(2000)))
	assert.False(t, aAfter.Balance.IsNegative())
	assert.False(t, bAfter.Balance.IsNegative())
}

func TestConcurrentDeposits_NoLostUpdates(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	acct := mustCreate(t, l, "0.00")

	one := decimal.NewFromInt(1)
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AdjustBalance(ctx, acct.ID, one)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	after, err := l.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(workers)))
}
