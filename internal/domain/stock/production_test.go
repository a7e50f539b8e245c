package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingProduction(t *testing.T) *OpenProduction {
	t.Helper()
	production, err := NewOpenProduction(uuid.New(), decimal.NewFromInt(1), uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	return production
}

func TestNewOpenProduction(t *testing.T) {
	t.Run("creates pending run", func(t *testing.T) {
		production := newPendingProduction(t)
		assert.Equal(t, ProductionStatusPending, production.Status)
		assert.Empty(t, production.Items)
	})

	t.Run("rejects non-positive output quantity", func(t *testing.T) {
		_, err := NewOpenProduction(uuid.New(), decimal.Zero, uuid.New(), uuid.New(), time.Now())
		assert.Error(t, err)
	})
}

func TestProductionItems(t *testing.T) {
	t.Run("add and remove while pending", func(t *testing.T) {
		production := newPendingProduction(t)
		require.NoError(t, production.AddItem(uuid.New(), decimal.NewFromInt(10)))
		require.NoError(t, production.AddItem(uuid.New(), decimal.NewFromInt(4)))
		require.Len(t, production.Items, 2)

		require.NoError(t, production.RemoveItem(production.Items[0].ID))
		assert.Len(t, production.Items, 1)
	})

	t.Run("rejects missing raw material", func(t *testing.T) {
		production := newPendingProduction(t)
		err := production.AddItem(uuid.Nil, decimal.NewFromInt(5))
		require.Error(t, err)
		assert.Empty(t, production.Items)
	})

	t.Run("cannot consume own output", func(t *testing.T) {
		production := newPendingProduction(t)
		err := production.AddItem(production.ProducedMaterialID, decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("edit refused after completion", func(t *testing.T) {
		production := newPendingProduction(t)
		r1 := uuid.New()
		require.NoError(t, production.AddItem(r1, decimal.NewFromInt(10)))
		require.NoError(t, production.Complete(map[uuid.UUID]decimal.Decimal{r1: decimal.NewFromInt(5)}, time.Now()))

		assert.Error(t, production.AddItem(uuid.New(), decimal.NewFromInt(1)))
		assert.Error(t, production.RemoveItem(production.Items[0].ID))
	})
}

func TestProductionComplete(t *testing.T) {
	t.Run("costs items from their captured average", func(t *testing.T) {
		// R1 qty 10 @ 5 plus R2 qty 4 @ 20 -> total 130.
		production := newPendingProduction(t)
		r1, r2 := uuid.New(), uuid.New()
		require.NoError(t, production.AddItem(r1, decimal.NewFromInt(10)))
		require.NoError(t, production.AddItem(r2, decimal.NewFromInt(4)))

		costs := map[uuid.UUID]decimal.Decimal{
			r1: decimal.NewFromInt(5),
			r2: decimal.NewFromInt(20),
		}
		require.NoError(t, production.Complete(costs, time.Now()))

		assert.Equal(t, ProductionStatusCompleted, production.Status)
		assert.True(t, production.TotalCost.Equal(decimal.NewFromInt(130)), production.TotalCost.String())
		assert.True(t, production.Items[0].TotalCost.Equal(decimal.NewFromInt(50)))
		assert.True(t, production.Items[1].TotalCost.Equal(decimal.NewFromInt(80)))
		// 1 unit produced -> output unit cost equals the consumed total.
		assert.True(t, production.OutputUnitCost().Equal(decimal.NewFromInt(130)))
	})

	t.Run("refuses empty runs", func(t *testing.T) {
		production := newPendingProduction(t)
		err := production.Complete(map[uuid.UUID]decimal.Decimal{}, time.Now())
		assert.Error(t, err)
	})

	t.Run("refuses missing cost basis", func(t *testing.T) {
		production := newPendingProduction(t)
		require.NoError(t, production.AddItem(uuid.New(), decimal.NewFromInt(3)))
		err := production.Complete(map[uuid.UUID]decimal.Decimal{}, time.Now())
		assert.Error(t, err)
		assert.Equal(t, ProductionStatusPending, production.Status)
	})

	t.Run("cancel while pending only", func(t *testing.T) {
		production := newPendingProduction(t)
		require.NoError(t, production.Cancel())
		assert.Error(t, production.Cancel())
	})
}
