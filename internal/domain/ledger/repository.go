package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// AccountRepository handles account aggregate persistence
type AccountRepository interface {
	shared.Repository[Account]
	// SaveWithLock persists with optimistic concurrency control on Version
	SaveWithLock(ctx context.Context, account *Account) error
	// FindIDs pages through account IDs in a stable order for recalculation
	FindIDs(ctx context.Context, offset, limit int) ([]uuid.UUID, error)
}

// EntryRepository handles the append-only account entry log. Entries are
// never updated or deleted; corrections are new ADJUSTMENT entries.
type EntryRepository interface {
	Append(ctx context.Context, entry *AccountEntry) error
	// FindByAccount returns the full history in (occurred_at, sequence) order
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]AccountEntry, error)
	// FindByAccountInRange returns in-window entries in canonical order,
	// start inclusive, end inclusive
	FindByAccountInRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]AccountEntry, error)
	// SumSignedBefore folds all entries strictly before the given date into
	// a single signed amount (the statement opening balance)
	SumSignedBefore(ctx context.Context, accountID uuid.UUID, before time.Time) (decimal.Decimal, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}
