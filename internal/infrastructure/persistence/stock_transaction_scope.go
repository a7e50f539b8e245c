package persistence

import (
	"context"

	"gorm.io/gorm"

	appstock "github.com/restobo/backend/internal/application/stock"
	"github.com/restobo/backend/internal/domain/stock"
)

// GormStockTransactionScope implements the stock TransactionScope using GORM
// transactions. Appending entries and saving projections commit or roll back
// as one unit.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStockRepositories{tx: tx})
	})
}

// gormStockRepositories provides transaction-scoped stock repositories
type gormStockRepositories struct {
	tx *gorm.DB
}

// Stocks returns the warehouse stock repository scoped to the transaction
func (r *gormStockRepositories) Stocks() stock.WarehouseStockRepository {
	return NewGormWarehouseStockRepository(r.tx)
}

// Entries returns the stock entry repository scoped to the transaction
func (r *gormStockRepositories) Entries() stock.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

// Materials returns the material repository scoped to the transaction
func (r *gormStockRepositories) Materials() stock.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

// Transfers returns the transfer repository scoped to the transaction
func (r *gormStockRepositories) Transfers() stock.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

// Productions returns the production run repository scoped to the transaction
func (r *gormStockRepositories) Productions() stock.ProductionRepository {
	return NewGormProductionRepository(r.tx)
}

// Ensure GormStockTransactionScope implements TransactionScope
var _ appstock.TransactionScope = (*GormStockTransactionScope)(nil)

// Ensure gormStockRepositories implements TransactionalRepositories
var _ appstock.TransactionalRepositories = (*gormStockRepositories)(nil)
