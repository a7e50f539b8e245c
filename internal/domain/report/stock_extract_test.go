package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestAggregate(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	whKitchen, whBar := uuid.New(), uuid.New()
	mainFood, mainDrink := uuid.New(), uuid.New()
	subMeat, subVeg, subSoft := uuid.New(), uuid.New(), uuid.New()

	rows := []MovementRow{
		{
			WarehouseID: whKitchen, WarehouseName: "Kitchen",
			MainCategoryID: mainFood, MainCategoryName: "Food",
			SubCategoryID: subMeat, SubCategoryName: "Meat",
			MaterialID: uuid.New(), MaterialName: "Beef", Unit: "g",
			OpeningQty: d(1000), OpeningValue: d(50),
			PurchaseInQty: d(500), PurchaseInValue: d(30),
			ProductionOutQty: d(200), ProductionOutValue: d(11),
		},
		{
			WarehouseID: whKitchen, WarehouseName: "Kitchen",
			MainCategoryID: mainFood, MainCategoryName: "Food",
			SubCategoryID: subVeg, SubCategoryName: "Vegetables",
			MaterialID: uuid.New(), MaterialName: "Tomato", Unit: "g",
			OpeningQty: d(400), OpeningValue: d(8),
			TransferOutQty: d(100), TransferOutValue: d(2),
		},
		{
			WarehouseID: whBar, WarehouseName: "Bar",
			MainCategoryID: mainDrink, MainCategoryName: "Drinks",
			SubCategoryID: subSoft, SubCategoryName: "Soft drinks",
			MaterialID: uuid.New(), MaterialName: "Cola", Unit: "ml",
			TransferInQty: d(100), TransferInValue: d(2),
		},
	}

	t.Run("quantity mode rolls up every level", func(t *testing.T) {
		extract, err := Aggregate(rows, ModeQuantity, start, end, decimal.Zero)
		require.NoError(t, err)

		require.Len(t, extract.Warehouses, 2)
		// Sorted by name: Bar before Kitchen.
		assert.Equal(t, "Bar", extract.Warehouses[0].Name)
		kitchen := extract.Warehouses[1]
		require.Len(t, kitchen.MainCategories, 1)

		food := kitchen.MainCategories[0]
		assert.True(t, food.Totals.Opening.Equal(d(1400)))
		assert.True(t, food.Totals.PurchaseIn.Equal(d(500)))
		assert.True(t, food.Totals.ProductionOut.Equal(d(200)))
		assert.True(t, food.Totals.TransferOut.Equal(d(100)))
		// closing = 1400 + 500 - 200 - 100
		assert.True(t, food.Totals.Closing.Equal(d(1600)), food.Totals.Closing.String())

		require.Len(t, food.SubCategories, 2)
		assert.Equal(t, "Meat", food.SubCategories[0].Name)
		assert.True(t, food.SubCategories[0].Totals.Closing.Equal(d(1300)))

		// Parent totals are exactly the sum of children.
		sum := Totals{}
		for _, sub := range food.SubCategories {
			sum.Add(sub.Totals)
		}
		assert.True(t, sum.Closing.Equal(food.Totals.Closing))
		assert.True(t, sum.Opening.Equal(food.Totals.Opening))

		// Grand summary spans both warehouses.
		assert.True(t, extract.Summary.TransferIn.Equal(d(100)))
		assert.True(t, extract.Summary.Closing.Equal(d(1700)))
	})

	t.Run("amount mode reads value columns", func(t *testing.T) {
		extract, err := Aggregate(rows, ModeAmount, start, end, decimal.Zero)
		require.NoError(t, err)

		assert.True(t, extract.Summary.Opening.Equal(d(58)))
		assert.True(t, extract.Summary.PurchaseIn.Equal(d(30)))
		// closing = 58 + 30 + 2 - 11 - 2
		assert.True(t, extract.Summary.Closing.Equal(d(77)), extract.Summary.Closing.String())
	})

	t.Run("vat mode uses material rate with configured fallback", func(t *testing.T) {
		rate := d(10)
		taxed := []MovementRow{
			{
				WarehouseID: whKitchen, WarehouseName: "Kitchen",
				MainCategoryID: mainFood, MainCategoryName: "Food",
				SubCategoryID: subMeat, SubCategoryName: "Meat",
				MaterialID: uuid.New(), MaterialName: "Beef", Unit: "g",
				TaxRate:    &rate,
				OpeningQty: d(1), OpeningValue: d(100),
			},
			{
				WarehouseID: whKitchen, WarehouseName: "Kitchen",
				MainCategoryID: mainFood, MainCategoryName: "Food",
				SubCategoryID: subMeat, SubCategoryName: "Meat",
				MaterialID: uuid.New(), MaterialName: "Chicken", Unit: "g",
				OpeningQty: d(1), OpeningValue: d(100),
			},
		}

		extract, err := Aggregate(taxed, ModeAmountWithVAT, start, end, d(18))
		require.NoError(t, err)
		// 100*1.10 + 100*1.18
		assert.True(t, extract.Summary.Opening.Equal(d(228)), extract.Summary.Opening.String())
	})

	t.Run("empty input yields empty extract", func(t *testing.T) {
		extract, err := Aggregate(nil, ModeQuantity, start, end, decimal.Zero)
		require.NoError(t, err)
		assert.Empty(t, extract.Warehouses)
		assert.True(t, extract.Summary.Closing.IsZero())
	})

	t.Run("rejects invalid mode", func(t *testing.T) {
		_, err := Aggregate(rows, Mode("value"), start, end, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		_, err := Aggregate(rows, ModeQuantity, end, start, decimal.Zero)
		assert.Error(t, err)
	})
}
