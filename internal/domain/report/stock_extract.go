package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// Mode selects what a stock extract measures
type Mode string

const (
	ModeQuantity      Mode = "quantity"
	ModeAmount        Mode = "amount"
	ModeAmountWithVAT Mode = "amount_with_vat"
)

// IsValid checks if the report mode is valid
func (m Mode) IsValid() bool {
	return m == ModeQuantity || m == ModeAmount || m == ModeAmountWithVAT
}

// MovementRow is one (warehouse, material) leaf of the report window,
// produced by the persistence layer from the stock entry log. Quantities are
// canonical units; values are quantity times the cost basis captured on each
// entry. The opening pair is the fold of everything before the window.
type MovementRow struct {
	WarehouseID      uuid.UUID
	WarehouseName    string
	MainCategoryID   uuid.UUID
	MainCategoryName string
	SubCategoryID    uuid.UUID
	SubCategoryName  string
	MaterialID       uuid.UUID
	MaterialName     string
	Unit             string
	TaxRate          *decimal.Decimal

	OpeningQty   decimal.Decimal
	OpeningValue decimal.Decimal

	PurchaseInQty     decimal.Decimal
	PurchaseInValue   decimal.Decimal
	TransferInQty     decimal.Decimal
	TransferInValue   decimal.Decimal
	TransferOutQty    decimal.Decimal
	TransferOutValue  decimal.Decimal
	ProductionInQty   decimal.Decimal
	ProductionInValue decimal.Decimal
	ProductionOutQty  decimal.Decimal
	ProductionOutValue decimal.Decimal
	AdjustmentInQty   decimal.Decimal
	AdjustmentInValue decimal.Decimal
	AdjustmentOutQty  decimal.Decimal
	AdjustmentOutValue decimal.Decimal
	ReturnOutQty      decimal.Decimal
	ReturnOutValue    decimal.Decimal
}

// Totals holds one node's movement figures in the selected mode. Closing is
// always opening plus inbound minus outbound for the same window.
type Totals struct {
	Opening       decimal.Decimal `json:"opening"`
	PurchaseIn    decimal.Decimal `json:"purchase_in"`
	TransferIn    decimal.Decimal `json:"transfer_in"`
	TransferOut   decimal.Decimal `json:"transfer_out"`
	ProductionIn  decimal.Decimal `json:"production_in"`
	ProductionOut decimal.Decimal `json:"production_out"`
	AdjustmentIn  decimal.Decimal `json:"adjustment_in"`
	AdjustmentOut decimal.Decimal `json:"adjustment_out"`
	ReturnOut     decimal.Decimal `json:"return_out"`
	Closing       decimal.Decimal `json:"closing"`
}

// TotalIn sums the inbound movements
func (t Totals) TotalIn() decimal.Decimal {
	return t.PurchaseIn.Add(t.TransferIn).Add(t.ProductionIn).Add(t.AdjustmentIn)
}

// TotalOut sums the outbound movements
func (t Totals) TotalOut() decimal.Decimal {
	return t.TransferOut.Add(t.ProductionOut).Add(t.AdjustmentOut).Add(t.ReturnOut)
}

// Add folds another node's totals into this one. Parent totals are nothing
// but the sum of their children; there is no business logic above the leaf.
func (t *Totals) Add(o Totals) {
	t.Opening = t.Opening.Add(o.Opening)
	t.PurchaseIn = t.PurchaseIn.Add(o.PurchaseIn)
	t.TransferIn = t.TransferIn.Add(o.TransferIn)
	t.TransferOut = t.TransferOut.Add(o.TransferOut)
	t.ProductionIn = t.ProductionIn.Add(o.ProductionIn)
	t.ProductionOut = t.ProductionOut.Add(o.ProductionOut)
	t.AdjustmentIn = t.AdjustmentIn.Add(o.AdjustmentIn)
	t.AdjustmentOut = t.AdjustmentOut.Add(o.AdjustmentOut)
	t.ReturnOut = t.ReturnOut.Add(o.ReturnOut)
	t.Closing = t.Closing.Add(o.Closing)
}

// MaterialNode is a leaf of the extract tree
type MaterialNode struct {
	MaterialID uuid.UUID `json:"material_id"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	Totals     Totals    `json:"totals"`
}

// SubCategoryNode groups materials under one sub category
type SubCategoryNode struct {
	CategoryID uuid.UUID      `json:"category_id"`
	Name       string         `json:"name"`
	Totals     Totals         `json:"totals"`
	Materials  []MaterialNode `json:"materials"`
}

// MainCategoryNode groups sub categories under one main category
type MainCategoryNode struct {
	CategoryID    uuid.UUID         `json:"category_id"`
	Name          string            `json:"name"`
	Totals        Totals            `json:"totals"`
	SubCategories []SubCategoryNode `json:"sub_categories"`
}

// WarehouseNode is the top grouping of the extract tree
type WarehouseNode struct {
	WarehouseID    uuid.UUID          `json:"warehouse_id"`
	Name           string             `json:"name"`
	Totals         Totals             `json:"totals"`
	MainCategories []MainCategoryNode `json:"main_categories"`
}

// StockExtract is the assembled warehouse -> main category -> sub category
// -> material rollup for one report window
type StockExtract struct {
	Mode      Mode            `json:"mode"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Summary   Totals          `json:"summary"`
	Warehouses []WarehouseNode `json:"warehouses"`
}

// leafTotals resolves the report mode at the leaf. Quantity mode reads the
// quantity columns; amount mode reads the value columns; amount-with-VAT
// additionally marks values up by the material's tax rate, falling back to
// the configured default rate.
func leafTotals(row *MovementRow, mode Mode, fallbackTaxRate decimal.Decimal) Totals {
	pick := func(qty, value decimal.Decimal) decimal.Decimal {
		switch mode {
		case ModeQuantity:
			return qty
		case ModeAmount:
			return value
		default:
			rate := fallbackTaxRate
			if row.TaxRate != nil {
				rate = *row.TaxRate
			}
			return stock.WithTax(value, rate)
		}
	}

	t := Totals{
		Opening:       pick(row.OpeningQty, row.OpeningValue),
		PurchaseIn:    pick(row.PurchaseInQty, row.PurchaseInValue),
		TransferIn:    pick(row.TransferInQty, row.TransferInValue),
		TransferOut:   pick(row.TransferOutQty, row.TransferOutValue),
		ProductionIn:  pick(row.ProductionInQty, row.ProductionInValue),
		ProductionOut: pick(row.ProductionOutQty, row.ProductionOutValue),
		AdjustmentIn:  pick(row.AdjustmentInQty, row.AdjustmentInValue),
		AdjustmentOut: pick(row.AdjustmentOutQty, row.AdjustmentOutValue),
		ReturnOut:     pick(row.ReturnOutQty, row.ReturnOutValue),
	}
	t.Closing = t.Opening.Add(t.TotalIn()).Sub(t.TotalOut())
	return t
}

// Aggregate rolls movement rows up the category tree. Pure function: it
// sums, selects the unit mode, and orders nodes by name; nothing else.
func Aggregate(rows []MovementRow, mode Mode, start, end time.Time, fallbackTaxRate decimal.Decimal) (*StockExtract, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid report mode: "+string(mode))
	}
	if end.Before(start) {
		return nil, shared.ErrInvalidPeriod
	}

	extract := &StockExtract{
		Mode:       mode,
		StartDate:  start,
		EndDate:    end,
		Warehouses: make([]WarehouseNode, 0),
	}

	type mainKey struct {
		warehouseID    uuid.UUID
		mainCategoryID uuid.UUID
	}
	type subKey struct {
		mainKey
		subCategoryID uuid.UUID
	}

	warehouses := make(map[uuid.UUID]*WarehouseNode)
	mains := make(map[mainKey]*MainCategoryNode)
	subs := make(map[subKey]*SubCategoryNode)

	for i := range rows {
		row := &rows[i]
		leaf := leafTotals(row, mode, fallbackTaxRate)

		wh, ok := warehouses[row.WarehouseID]
		if !ok {
			wh = &WarehouseNode{WarehouseID: row.WarehouseID, Name: row.WarehouseName}
			warehouses[row.WarehouseID] = wh
		}

		mk := mainKey{warehouseID: row.WarehouseID, mainCategoryID: row.MainCategoryID}
		main, ok := mains[mk]
		if !ok {
			main = &MainCategoryNode{CategoryID: row.MainCategoryID, Name: row.MainCategoryName}
			mains[mk] = main
		}

		sk := subKey{mainKey: mk, subCategoryID: row.SubCategoryID}
		sub, ok := subs[sk]
		if !ok {
			sub = &SubCategoryNode{CategoryID: row.SubCategoryID, Name: row.SubCategoryName}
			subs[sk] = sub
		}

		sub.Materials = append(sub.Materials, MaterialNode{
			MaterialID: row.MaterialID,
			Name:       row.MaterialName,
			Unit:       row.Unit,
			Totals:     leaf,
		})
		sub.Totals.Add(leaf)
		main.Totals.Add(leaf)
		wh.Totals.Add(leaf)
		extract.Summary.Add(leaf)
	}

	for sk, sub := range subs {
		sort.Slice(sub.Materials, func(i, j int) bool {
			return sub.Materials[i].Name < sub.Materials[j].Name
		})
		mains[sk.mainKey].SubCategories = append(mains[sk.mainKey].SubCategories, *sub)
	}
	for mk, main := range mains {
		sort.Slice(main.SubCategories, func(i, j int) bool {
			return main.SubCategories[i].Name < main.SubCategories[j].Name
		})
		warehouses[mk.warehouseID].MainCategories = append(warehouses[mk.warehouseID].MainCategories, *main)
	}
	for _, wh := range warehouses {
		sort.Slice(wh.MainCategories, func(i, j int) bool {
			return wh.MainCategories[i].Name < wh.MainCategories[j].Name
		})
		extract.Warehouses = append(extract.Warehouses, *wh)
	}
	sort.Slice(extract.Warehouses, func(i, j int) bool {
		return extract.Warehouses[i].Name < extract.Warehouses[j].Name
	})

	return extract, nil
}
