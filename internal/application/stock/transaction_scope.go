package stock

import (
	"context"

	"github.com/restobo/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to stock repositories.
// Appending a stock entry and persisting the updated projection must commit
// or roll back as one unit; every mutating service path runs inside Execute.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within
// a transaction. All repositories share the same underlying transaction.
type TransactionalRepositories interface {
	// Stocks returns the warehouse stock projection repository
	Stocks() stock.WarehouseStockRepository
	// Entries returns the append-only stock entry repository
	Entries() stock.StockEntryRepository
	// Materials returns the material repository
	Materials() stock.MaterialRepository
	// Transfers returns the transfer repository
	Transfers() stock.TransferRepository
	// Productions returns the production run repository
	Productions() stock.ProductionRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	stocks      stock.WarehouseStockRepository
	entries     stock.StockEntryRepository
	materials   stock.MaterialRepository
	transfers   stock.TransferRepository
	productions stock.ProductionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	stocks stock.WarehouseStockRepository,
	entries stock.StockEntryRepository,
	materials stock.MaterialRepository,
	transfers stock.TransferRepository,
	productions stock.ProductionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stocks:      stocks,
		entries:     entries,
		materials:   materials,
		transfers:   transfers,
		productions: productions,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Stocks returns the warehouse stock repository
func (s *NoOpTransactionScope) Stocks() stock.WarehouseStockRepository { return s.stocks }

// Entries returns the stock entry repository
func (s *NoOpTransactionScope) Entries() stock.StockEntryRepository { return s.entries }

// Materials returns the material repository
func (s *NoOpTransactionScope) Materials() stock.MaterialRepository { return s.materials }

// Transfers returns the transfer repository
func (s *NoOpTransactionScope) Transfers() stock.TransferRepository { return s.transfers }

// Productions returns the production run repository
func (s *NoOpTransactionScope) Productions() stock.ProductionRepository { return s.productions }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
