package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/ledger"
)

// GormAccountEntryRepository implements EntryRepository using GORM. The
// account_entries table is append-only; there are no update or delete paths.
type GormAccountEntryRepository struct {
	db *gorm.DB
}

// NewGormAccountEntryRepository creates a new GormAccountEntryRepository
func NewGormAccountEntryRepository(db *gorm.DB) *GormAccountEntryRepository {
	return &GormAccountEntryRepository{db: db}
}

// Append inserts a new entry. The Sequence column is assigned by the database.
func (r *GormAccountEntryRepository) Append(ctx context.Context, entry *ledger.AccountEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByAccount returns the full entry history in canonical order
func (r *GormAccountEntryRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]ledger.AccountEntry, error) {
	var entries []ledger.AccountEntry
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("occurred_at ASC, sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByAccountInRange returns in-window entries in canonical order, both
// bounds inclusive
func (r *GormAccountEntryRepository) FindByAccountInRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]ledger.AccountEntry, error) {
	var entries []ledger.AccountEntry
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND occurred_at >= ? AND occurred_at <= ?", accountID, start, end).
		Order("occurred_at ASC, sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumSignedBefore folds all entries strictly before the given date into one
// signed amount
func (r *GormAccountEntryRepository) SumSignedBefore(ctx context.Context, accountID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.AccountEntry{}).
		Select("COALESCE(SUM(signed_amount), 0) as total").
		Where("account_id = ? AND occurred_at < ?", accountID, before).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountByAccount counts all entries for an account
func (r *GormAccountEntryRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.AccountEntry{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAccountEntryRepository implements EntryRepository
var _ ledger.EntryRepository = (*GormAccountEntryRepository)(nil)
