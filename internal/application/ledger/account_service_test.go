package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
)

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active account", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)

		dto, err := svc.Create(ctx, CreateAccountInput{
			Name: "Acme Produce",
			Type: ledger.AccountTypeSupplier,
		})
		require.NoError(t, err)
		assert.True(t, dto.IsActive)
		assert.True(t, dto.CurrentBalance.IsZero())

		count, err := env.entries.CountByAccount(ctx, dto.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("a non-zero opening balance becomes an adjustment entry", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)

		dto, err := svc.Create(ctx, CreateAccountInput{
			Name:           "Acme Produce",
			Type:           ledger.AccountTypeSupplier,
			OpeningBalance: decimal.NewFromInt(250),
		})
		require.NoError(t, err)
		assert.True(t, dto.CurrentBalance.Equal(decimal.NewFromInt(250)))

		entries, err := env.entries.FindByAccount(ctx, dto.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.EntryKindAdjustment, entries[0].Kind)
		assert.True(t, entries[0].SignedAmount.Equal(decimal.NewFromInt(250)))

		// The materialized balance must equal the fold of the history.
		folded := ledger.FoldBalance(decimal.Zero, entries)
		assert.True(t, folded.Equal(dto.CurrentBalance))
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)
		_, err := svc.Create(ctx, CreateAccountInput{Type: ledger.AccountTypeCustomer})
		assert.Error(t, err)
	})
}

func TestAccountService_RecordEntry(t *testing.T) {
	ctx := context.Background()

	newAccount := func(t *testing.T, env *testEnv) *AccountDTO {
		t.Helper()
		svc := NewAccountService(env.scope, nil)
		dto, err := svc.Create(ctx, CreateAccountInput{
			Name: "Acme Produce",
			Type: ledger.AccountTypeSupplier,
		})
		require.NoError(t, err)
		return dto
	}

	t.Run("debt and payment fold into the balance", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)
		account := newAccount(t, env)

		_, err := svc.RecordEntry(ctx, RecordEntryInput{
			AccountID:  account.ID,
			Kind:       ledger.EntryKindDebt,
			Amount:     decimal.NewFromInt(500),
			OccurredAt: time.Now(),
			Reference:  "invoice 42",
		})
		require.NoError(t, err)

		payment, err := svc.RecordEntry(ctx, RecordEntryInput{
			AccountID:  account.ID,
			Kind:       ledger.EntryKindPayment,
			Amount:     decimal.NewFromInt(200),
			OccurredAt: time.Now(),
		})
		require.NoError(t, err)
		assert.True(t, payment.SignedAmount.Equal(decimal.NewFromInt(-200)))

		got, err := svc.Get(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, 1, got.TransactionCount)
		assert.Equal(t, 1, got.PaymentCount)
	})

	t.Run("entries on a deactivated account are rejected", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)
		account := newAccount(t, env)
		require.NoError(t, svc.Deactivate(ctx, account.ID))

		_, err := svc.RecordEntry(ctx, RecordEntryInput{
			AccountID:  account.ID,
			Kind:       ledger.EntryKindDebt,
			Amount:     decimal.NewFromInt(10),
			OccurredAt: time.Now(),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)

		count, err := env.entries.CountByAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("zero amounts are rejected", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)
		account := newAccount(t, env)

		_, err := svc.RecordEntry(ctx, RecordEntryInput{
			AccountID:  account.ID,
			Kind:       ledger.EntryKindDebt,
			Amount:     decimal.Zero,
			OccurredAt: time.Now(),
		})
		assert.Error(t, err)
	})

	t.Run("unknown accounts are rejected", func(t *testing.T) {
		env := newTestEnv()
		svc := NewAccountService(env.scope, nil)
		_, err := svc.RecordEntry(ctx, RecordEntryInput{
			AccountID:  uuid.New(),
			Kind:       ledger.EntryKindDebt,
			Amount:     decimal.NewFromInt(10),
			OccurredAt: time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStatementService_GetStatement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	accounts := NewAccountService(env.scope, nil)
	statements := NewStatementService(env.scope, nil)

	account, err := accounts.Create(ctx, CreateAccountInput{
		Name: "Acme Produce",
		Type: ledger.AccountTypeSupplier,
	})
	require.NoError(t, err)

	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	aprilEnd := time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC)

	record := func(kind ledger.EntryKind, amount int64, at time.Time) {
		t.Helper()
		_, err := accounts.RecordEntry(ctx, RecordEntryInput{
			AccountID:  account.ID,
			Kind:       kind,
			Amount:     decimal.NewFromInt(amount),
			OccurredAt: at,
		})
		require.NoError(t, err)
	}

	record(ledger.EntryKindDebt, 1000, march.AddDate(0, 0, 10))
	record(ledger.EntryKindPayment, 400, march.AddDate(0, 0, 20))
	record(ledger.EntryKindDebt, 500, april.AddDate(0, 0, 5))
	record(ledger.EntryKindPayment, 200, april.AddDate(0, 0, 15))

	t.Run("opening balance folds everything before the window", func(t *testing.T) {
		statement, err := statements.GetStatement(ctx, account.ID, april, aprilEnd, true)
		require.NoError(t, err)

		assert.True(t, statement.OpeningBalance.Equal(decimal.NewFromInt(600)))
		assert.True(t, statement.TotalDebit.Equal(decimal.NewFromInt(500)))
		assert.True(t, statement.TotalCredit.Equal(decimal.NewFromInt(200)))
		assert.True(t, statement.ClosingBalance.Equal(decimal.NewFromInt(900)))
		require.Len(t, statement.Lines, 2)
		assert.True(t, statement.Lines[0].RunningBalance.Equal(decimal.NewFromInt(1100)))
		assert.True(t, statement.Lines[1].RunningBalance.Equal(decimal.NewFromInt(900)))
	})

	t.Run("summary mode carries identical numbers", func(t *testing.T) {
		detailed, err := statements.GetStatement(ctx, account.ID, april, aprilEnd, true)
		require.NoError(t, err)
		summary, err := statements.GetStatement(ctx, account.ID, april, aprilEnd, false)
		require.NoError(t, err)

		assert.True(t, summary.ClosingBalance.Equal(detailed.ClosingBalance))
		assert.True(t, summary.TotalDebit.Equal(detailed.TotalDebit))
		assert.Equal(t, detailed.TransactionCount, summary.TransactionCount)
	})

	t.Run("an inverted window is rejected", func(t *testing.T) {
		_, err := statements.GetStatement(ctx, account.ID, aprilEnd, april, true)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrInvalidPeriod.Code, domainErr.Code)
	})

	t.Run("balance as of a date folds inclusively", func(t *testing.T) {
		balance, err := statements.GetBalanceAsOf(ctx, account.ID, april.AddDate(0, 0, 5))
		require.NoError(t, err)
		assert.True(t, balance.Balance.Equal(decimal.NewFromInt(1100)))
	})
}
