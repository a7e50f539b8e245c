package stock

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// In-memory repositories backing the service tests. They honor the same
// contracts as the gorm implementations: ErrNotFound on misses, canonical
// (occurred_at, sequence) ordering on entry reads.

type fakeMaterialRepo struct {
	items map[uuid.UUID]*stock.Material
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{items: make(map[uuid.UUID]*stock.Material)}
}

func (r *fakeMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Material, error) {
	if m, ok := r.items[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMaterialRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.Material, error) {
	out := make([]stock.Material, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMaterialRepo) Save(_ context.Context, m *stock.Material) error {
	r.items[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) SaveWithLock(_ context.Context, m *stock.Material) error {
	r.items[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeMaterialRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeMaterialRepo) FindByCategory(_ context.Context, categoryID uuid.UUID) ([]stock.Material, error) {
	var out []stock.Material
	for _, m := range r.items {
		if m.CategoryID == categoryID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeStockRepo struct {
	rows map[stock.StockKey]*stock.WarehouseStock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[stock.StockKey]*stock.WarehouseStock)}
}

func (r *fakeStockRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.WarehouseStock, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRepo) FindByKey(_ context.Context, materialID, warehouseID uuid.UUID) (*stock.WarehouseStock, error) {
	if row, ok := r.rows[stock.StockKey{MaterialID: materialID, WarehouseID: warehouseID}]; ok {
		return row, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) ([]stock.WarehouseStock, error) {
	var out []stock.WarehouseStock
	for _, row := range r.rows {
		if row.WarehouseID == warehouseID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindByMaterial(_ context.Context, materialID uuid.UUID) ([]stock.WarehouseStock, error) {
	var out []stock.WarehouseStock
	for _, row := range r.rows {
		if row.MaterialID == materialID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindLowStock(_ context.Context, warehouseID uuid.UUID) ([]stock.WarehouseStock, error) {
	var out []stock.WarehouseStock
	for _, row := range r.rows {
		if row.WarehouseID == warehouseID && row.IsLowStock() {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) Save(_ context.Context, row *stock.WarehouseStock) error {
	r.rows[stock.StockKey{MaterialID: row.MaterialID, WarehouseID: row.WarehouseID}] = row
	return nil
}

func (r *fakeStockRepo) SaveWithLock(_ context.Context, row *stock.WarehouseStock) error {
	r.rows[stock.StockKey{MaterialID: row.MaterialID, WarehouseID: row.WarehouseID}] = row
	return nil
}

func (r *fakeStockRepo) TotalQuantity(_ context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.rows {
		if row.WarehouseID == warehouseID {
			total = total.Add(row.CurrentStock)
		}
	}
	return total, nil
}

func (r *fakeStockRepo) WeightedAverageCost(_ context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	totalQty, totalValue := decimal.Zero, decimal.Zero
	for _, row := range r.rows {
		if row.MaterialID == materialID {
			totalQty = totalQty.Add(row.CurrentStock)
			totalValue = totalValue.Add(row.CurrentStock.Mul(row.AverageCost))
		}
	}
	if !totalQty.IsPositive() {
		return decimal.Zero, nil
	}
	return totalValue.DivRound(totalQty, 4), nil
}

type fakeEntryRepo struct {
	entries []stock.StockEntry
	nextSeq int64
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{}
}

func (r *fakeEntryRepo) Append(_ context.Context, entry *stock.StockEntry) error {
	r.nextSeq++
	entry.Sequence = r.nextSeq
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeEntryRepo) AppendAll(ctx context.Context, entries []*stock.StockEntry) error {
	for _, e := range entries {
		if err := r.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeEntryRepo) FindByKey(_ context.Context, materialID, warehouseID uuid.UUID) ([]stock.StockEntry, error) {
	var out []stock.StockEntry
	for _, e := range r.entries {
		if e.MaterialID == materialID && e.WarehouseID == warehouseID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (r *fakeEntryRepo) FindByKeyUpTo(ctx context.Context, materialID, warehouseID uuid.UUID, cutoff time.Time) ([]stock.StockEntry, error) {
	all, _ := r.FindByKey(ctx, materialID, warehouseID)
	var out []stock.StockEntry
	for _, e := range all {
		if !e.OccurredAt.After(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) DistinctKeys(_ context.Context, offset, limit int) ([]stock.StockKey, error) {
	seen := make(map[stock.StockKey]bool)
	var keys []stock.StockKey
	for _, e := range r.entries {
		key := stock.StockKey{MaterialID: e.MaterialID, WarehouseID: e.WarehouseID}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if offset >= len(keys) {
		return nil, nil
	}
	end := offset + limit
	if end > len(keys) {
		end = len(keys)
	}
	return keys[offset:end], nil
}

func (r *fakeEntryRepo) CountByKey(_ context.Context, materialID, warehouseID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.entries {
		if e.MaterialID == materialID && e.WarehouseID == warehouseID {
			n++
		}
	}
	return n, nil
}

func sortEntries(entries []stock.StockEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].Sequence < entries[j].Sequence
		}
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})
}

type fakeTransferRepo struct {
	items map[uuid.UUID]*stock.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{items: make(map[uuid.UUID]*stock.Transfer)}
}

func (r *fakeTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Transfer, error) {
	if t, ok := r.items[id]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTransferRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.Transfer, error) {
	out := make([]stock.Transfer, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTransferRepo) Save(_ context.Context, t *stock.Transfer) error {
	r.items[t.ID] = t
	return nil
}

func (r *fakeTransferRepo) SaveWithLock(_ context.Context, t *stock.Transfer) error {
	r.items[t.ID] = t
	return nil
}

func (r *fakeTransferRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeTransferRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeTransferRepo) FindByStatus(_ context.Context, status stock.TransferStatus, _ shared.Filter) ([]stock.Transfer, error) {
	var out []stock.Transfer
	for _, t := range r.items {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeProductionRepo struct {
	items map[uuid.UUID]*stock.OpenProduction
}

func newFakeProductionRepo() *fakeProductionRepo {
	return &fakeProductionRepo{items: make(map[uuid.UUID]*stock.OpenProduction)}
}

func (r *fakeProductionRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.OpenProduction, error) {
	if p, ok := r.items[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductionRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.OpenProduction, error) {
	out := make([]stock.OpenProduction, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductionRepo) Save(_ context.Context, p *stock.OpenProduction) error {
	r.items[p.ID] = p
	return nil
}

func (r *fakeProductionRepo) SaveWithLock(_ context.Context, p *stock.OpenProduction) error {
	r.items[p.ID] = p
	return nil
}

func (r *fakeProductionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeProductionRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeProductionRepo) FindByStatus(_ context.Context, status stock.ProductionStatus, _ shared.Filter) ([]stock.OpenProduction, error) {
	var out []stock.OpenProduction
	for _, p := range r.items {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	items map[uuid.UUID]*stock.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{items: make(map[uuid.UUID]*stock.Category)}
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Category, error) {
	if c, ok := r.items[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.Category, error) {
	out := make([]stock.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Save(_ context.Context, c *stock.Category) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeCategoryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeCategoryRepo) FindChildren(_ context.Context, parentID uuid.UUID) ([]stock.Category, error) {
	var out []stock.Category
	for _, c := range r.items {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindMain(_ context.Context) ([]stock.Category, error) {
	var out []stock.Category
	for _, c := range r.items {
		if c.ParentID == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeWarehouseRepo struct {
	items map[uuid.UUID]*stock.Warehouse
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{items: make(map[uuid.UUID]*stock.Warehouse)}
}

func (r *fakeWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Warehouse, error) {
	if w, ok := r.items[id]; ok {
		return w, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeWarehouseRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.Warehouse, error) {
	out := make([]stock.Warehouse, 0, len(r.items))
	for _, w := range r.items {
		out = append(out, *w)
	}
	return out, nil
}

func (r *fakeWarehouseRepo) Save(_ context.Context, w *stock.Warehouse) error {
	r.items[w.ID] = w
	return nil
}

func (r *fakeWarehouseRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeWarehouseRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

// testEnv bundles the fakes behind a no-op transaction scope
type testEnv struct {
	scope       *NoOpTransactionScope
	stocks      *fakeStockRepo
	entries     *fakeEntryRepo
	materials   *fakeMaterialRepo
	transfers   *fakeTransferRepo
	productions *fakeProductionRepo
}

func newTestEnv() *testEnv {
	stocks := newFakeStockRepo()
	entries := newFakeEntryRepo()
	materials := newFakeMaterialRepo()
	transfers := newFakeTransferRepo()
	productions := newFakeProductionRepo()
	return &testEnv{
		scope:       NewNoOpTransactionScope(stocks, entries, materials, transfers, productions),
		stocks:      stocks,
		entries:     entries,
		materials:   materials,
		transfers:   transfers,
		productions: productions,
	}
}
