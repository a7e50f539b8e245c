package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobo/backend/internal/domain/shared"
)

func newTestStock(t *testing.T) *WarehouseStock {
	t.Helper()
	stock, err := NewWarehouseStock(uuid.New(), uuid.New())
	require.NoError(t, err)
	return stock
}

func newTestEntry(t *testing.T, stock *WarehouseStock, kind StockEntryKind, qty, unitCost float64) *StockEntry {
	t.Helper()
	entry, err := NewStockEntry(stock.MaterialID, stock.WarehouseID, kind,
		decimal.NewFromFloat(qty), decimal.NewFromFloat(unitCost), time.Now())
	require.NoError(t, err)
	return entry
}

func TestWarehouseStockApplyInbound(t *testing.T) {
	t.Run("purchase into empty stock", func(t *testing.T) {
		// 2 purchase units of a kg->g material (factor 1000) bought at 50/kg
		// arrive as 2000 g at 0.05/g.
		stock := newTestStock(t)
		entry := newTestEntry(t, stock, StockEntryPurchaseIn, 2000, 0.05)

		require.NoError(t, stock.Apply(entry))

		assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(2000)))
		assert.True(t, stock.AverageCost.Equal(decimal.NewFromFloat(0.05)))
		assert.True(t, entry.BalanceBefore.IsZero())
		assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("second purchase re-blends the average", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 100, 10)))
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 50, 16)))

		assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(150)))
		assert.True(t, stock.AverageCost.Equal(decimal.NewFromInt(12)), stock.AverageCost.String())
	})

	t.Run("rejects entry for another key", func(t *testing.T) {
		stock := newTestStock(t)
		other := newTestStock(t)
		entry := newTestEntry(t, other, StockEntryPurchaseIn, 10, 1)

		assert.Error(t, stock.Apply(entry))
		assert.True(t, stock.CurrentStock.IsZero())
	})
}

func TestWarehouseStockApplyOutbound(t *testing.T) {
	t.Run("consumes at current average without changing it", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 100, 12)))

		out := newTestEntry(t, stock, StockEntryTransferOut, 40, 0)
		require.NoError(t, stock.Apply(out))

		assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(60)))
		assert.True(t, stock.AverageCost.Equal(decimal.NewFromInt(12)))
		// Cost basis stamped from the average at application time.
		assert.True(t, out.UnitCost.Equal(decimal.NewFromInt(12)))
		assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(480)))
	})

	t.Run("reserved stock lowers the floor", func(t *testing.T) {
		// currentStock=100, reserved=20 -> available=80. 90 must be
		// rejected; 80 must drain the warehouse to available=0.
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 100, 5)))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(20)))

		tooMuch := newTestEntry(t, stock, StockEntryTransferOut, 90, 0)
		err := stock.Apply(tooMuch)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Equal(t, "80", domainErr.Details["available"])

		ok := newTestEntry(t, stock, StockEntryTransferOut, 80, 0)
		require.NoError(t, stock.Apply(ok))
		assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(20)))
		assert.True(t, stock.AvailableStock().IsZero())
	})

	t.Run("rejection leaves everything unchanged", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 10, 7)))
		stock.ClearDomainEvents()

		entry := newTestEntry(t, stock, StockEntryReturnOut, 11, 0)
		require.Error(t, stock.Apply(entry))

		assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(10)))
		assert.True(t, stock.AverageCost.Equal(decimal.NewFromInt(7)))
		assert.Empty(t, stock.GetDomainEvents())
		// The rejected entry carries no balance transition either.
		assert.True(t, entry.BalanceBefore.IsZero())
		assert.True(t, entry.BalanceAfter.IsZero())
	})

	t.Run("available never exceeds current after any sequence", func(t *testing.T) {
		stock := newTestStock(t)
		steps := []struct {
			kind StockEntryKind
			qty  float64
			cost float64
		}{
			{StockEntryPurchaseIn, 500, 2},
			{StockEntryAdjustmentOut, 120, 0},
			{StockEntryTransferIn, 60, 3},
			{StockEntryProductionOut, 300, 0},
			{StockEntryAdjustmentIn, 45, 2.5},
		}
		for _, step := range steps {
			err := stock.Apply(newTestEntry(t, stock, step.kind, step.qty, step.cost))
			require.NoError(t, err)
			assert.True(t, stock.AvailableStock().LessThanOrEqual(stock.CurrentStock))
			assert.False(t, stock.CurrentStock.IsNegative())
		}
	})
}

func TestWarehouseStockReservations(t *testing.T) {
	t.Run("reserve and release", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 50, 1)))

		require.NoError(t, stock.Reserve(decimal.NewFromInt(30)))
		assert.True(t, stock.AvailableStock().Equal(decimal.NewFromInt(20)))

		require.NoError(t, stock.ReleaseReservation(decimal.NewFromInt(10)))
		assert.True(t, stock.AvailableStock().Equal(decimal.NewFromInt(30)))
	})

	t.Run("cannot reserve beyond available", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 50, 1)))
		assert.Error(t, stock.Reserve(decimal.NewFromInt(51)))
	})

	t.Run("cannot release more than reserved", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 50, 1)))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(5)))
		assert.Error(t, stock.ReleaseReservation(decimal.NewFromInt(6)))
	})
}

func TestWarehouseStockRebuild(t *testing.T) {
	t.Run("overwrites projection and caps reservation", func(t *testing.T) {
		stock := newTestStock(t)
		require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 100, 4)))
		require.NoError(t, stock.Reserve(decimal.NewFromInt(40)))

		stock.Rebuild(Snapshot{Quantity: decimal.NewFromInt(25), AverageCost: decimal.NewFromFloat(4.5)})

		assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(25)))
		assert.True(t, stock.AverageCost.Equal(decimal.NewFromFloat(4.5)))
		assert.True(t, stock.ReservedStock.Equal(decimal.NewFromInt(25)))
		assert.False(t, stock.AvailableStock().IsNegative())
	})
}

func TestWarehouseStockLowStock(t *testing.T) {
	stock := newTestStock(t)
	require.NoError(t, stock.SetMinimumStock(decimal.NewFromInt(100)))
	require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 80, 1)))
	assert.True(t, stock.IsLowStock())

	require.NoError(t, stock.Apply(newTestEntry(t, stock, StockEntryPurchaseIn, 30, 1)))
	assert.False(t, stock.IsLowStock())
}
