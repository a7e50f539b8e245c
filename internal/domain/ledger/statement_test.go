package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntry(t *testing.T, accountID uuid.UUID, kind EntryKind, amount int64, occurred time.Time) AccountEntry {
	t.Helper()
	entry, err := NewAccountEntry(accountID, kind, decimal.NewFromInt(amount), occurred, "")
	require.NoError(t, err)
	return *entry
}

func TestFoldBalance(t *testing.T) {
	accountID := uuid.New()
	day := func(d int) time.Time { return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC) }

	t.Run("empty history yields opening balance", func(t *testing.T) {
		got := FoldBalance(decimal.NewFromInt(42), nil)
		assert.True(t, got.Equal(decimal.NewFromInt(42)))
	})

	t.Run("incremental apply equals whole-history fold", func(t *testing.T) {
		entries := []AccountEntry{
			mustEntry(t, accountID, EntryKindDebt, 500, day(1)),
			mustEntry(t, accountID, EntryKindCredit, 120, day(2)),
			mustEntry(t, accountID, EntryKindPayment, 200, day(5)),
			mustEntry(t, accountID, EntryKindAdjustment, 15, day(5)),
			mustEntry(t, accountID, EntryKindDebt, 310, day(9)),
		}

		folded := FoldBalance(decimal.Zero, entries)

		account, _ := NewAccount("Acme", AccountTypeCustomer, decimal.Zero)
		account.ID = accountID
		for i := range entries {
			e := entries[i]
			require.NoError(t, account.ApplyEntry(&e))
		}

		assert.True(t, folded.Equal(account.CurrentBalance),
			"fold %s != incremental %s", folded, account.CurrentBalance)
		assert.True(t, folded.Equal(decimal.NewFromInt(505)))
	})
}

func TestBuildStatement(t *testing.T) {
	accountID := uuid.New()
	day := func(d int) time.Time { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC) }

	t.Run("debt then payment over the window", func(t *testing.T) {
		// Opening 0; DEBT 500 on day 1, PAYMENT 200 on day 5.
		entries := []AccountEntry{
			mustEntry(t, accountID, EntryKindDebt, 500, day(1)),
			mustEntry(t, accountID, EntryKindPayment, 200, day(5)),
		}

		stmt := BuildStatement(accountID, day(1), day(10), decimal.Zero, entries, true)

		assert.True(t, stmt.OpeningBalance.IsZero())
		assert.True(t, stmt.TotalDebit.Equal(decimal.NewFromInt(500)))
		assert.True(t, stmt.TotalCredit.Equal(decimal.NewFromInt(200)))
		assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, 2, stmt.TransactionCount)

		require.Len(t, stmt.Lines, 2)
		assert.True(t, stmt.Lines[0].RunningBalance.Equal(decimal.NewFromInt(500)))
		assert.True(t, stmt.Lines[1].RunningBalance.Equal(decimal.NewFromInt(300)))
	})

	t.Run("opening balance carries into running balances", func(t *testing.T) {
		entries := []AccountEntry{
			mustEntry(t, accountID, EntryKindCredit, 50, day(3)),
		}

		stmt := BuildStatement(accountID, day(1), day(31), decimal.NewFromInt(1000), entries, false)

		assert.True(t, stmt.OpeningBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(950)))
		require.Len(t, stmt.Lines, 1)
		assert.True(t, stmt.Lines[0].RunningBalance.Equal(decimal.NewFromInt(950)))
	})

	t.Run("closing equals opening plus signed sum", func(t *testing.T) {
		entries := []AccountEntry{
			mustEntry(t, accountID, EntryKindDebt, 100, day(2)),
			mustEntry(t, accountID, EntryKindAdjustment, -40, day(2)),
			mustEntry(t, accountID, EntryKindPayment, 25, day(8)),
		}

		stmt := BuildStatement(accountID, day(1), day(10), decimal.NewFromInt(7), entries, false)

		expected := decimal.NewFromInt(7).Add(FoldBalance(decimal.Zero, entries))
		assert.True(t, stmt.ClosingBalance.Equal(expected))
	})

	t.Run("detail payload omitted when not detailed", func(t *testing.T) {
		entry := mustEntry(t, accountID, EntryKindDebt, 100, day(2))
		entry.Detail = map[string]any{"invoice_lines": 3}
		entries := []AccountEntry{entry}

		compact := BuildStatement(accountID, day(1), day(10), decimal.Zero, entries, false)
		detailed := BuildStatement(accountID, day(1), day(10), decimal.Zero, entries, true)

		assert.Nil(t, compact.Lines[0].Detail)
		assert.NotNil(t, detailed.Lines[0].Detail)
		// Same computation either way.
		assert.True(t, compact.ClosingBalance.Equal(detailed.ClosingBalance))
	})

	t.Run("empty window", func(t *testing.T) {
		stmt := BuildStatement(accountID, day(1), day(10), decimal.NewFromInt(33), nil, true)
		assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(33)))
		assert.Empty(t, stmt.Lines)
		assert.Equal(t, 0, stmt.TransactionCount)
	})
}
