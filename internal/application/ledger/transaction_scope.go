package ledger

import (
	"context"

	"github.com/restobo/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// Appending an entry and updating the account projection must commit or roll
// back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// within a transaction
type TransactionalRepositories interface {
	// Accounts returns the account repository scoped to the transaction
	Accounts() ledger.AccountRepository
	// Entries returns the append-only entry repository scoped to the
	// transaction
	Entries() ledger.EntryRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	accounts ledger.AccountRepository
	entries  ledger.EntryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(accounts ledger.AccountRepository, entries ledger.EntryRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{accounts: accounts, entries: entries}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Accounts returns the account repository
func (s *NoOpTransactionScope) Accounts() ledger.AccountRepository { return s.accounts }

// Entries returns the entry repository
func (s *NoOpTransactionScope) Entries() ledger.EntryRepository { return s.entries }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
