package persistence

import (
	"context"

	"gorm.io/gorm"

	appledger "github.com/restobo/backend/internal/application/ledger"
	"github.com/restobo/backend/internal/domain/ledger"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. Appending an entry and saving the account projection
// commit or roll back as one unit.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories provides transaction-scoped ledger repositories
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Accounts returns the account repository scoped to the transaction
func (r *gormLedgerRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Entries returns the entry repository scoped to the transaction
func (r *gormLedgerRepositories) Entries() ledger.EntryRepository {
	return NewGormAccountEntryRepository(r.tx)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
