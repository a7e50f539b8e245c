package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// EntryKind classifies an account ledger entry
type EntryKind string

const (
	EntryKindDebt       EntryKind = "DEBT"
	EntryKindCredit     EntryKind = "CREDIT"
	EntryKindPayment    EntryKind = "PAYMENT"
	EntryKindAdjustment EntryKind = "ADJUSTMENT"
)

// IsValid checks if the entry kind is valid
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindDebt, EntryKindCredit, EntryKindPayment, EntryKindAdjustment:
		return true
	}
	return false
}

// IsPayment reports whether the kind settles outstanding debt
func (k EntryKind) IsPayment() bool {
	return k == EntryKindPayment
}

// AccountEntry is an immutable, append-only ledger record for an account.
// SignedAmount is the authoritative balance contribution: positive values
// increase what the account owes, negative values decrease it. Entries are
// ordered by (OccurredAt, Sequence); the sequence breaks same-day ties in
// insertion order.
type AccountEntry struct {
	shared.BaseEntity
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_account_entries_account_date,priority:1"`
	Kind         EntryKind       `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	SignedAmount decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	OccurredAt   time.Time       `gorm:"not null;index:idx_account_entries_account_date,priority:2"`
	Sequence     int64           `gorm:"autoIncrement;uniqueIndex"`
	Reference    string          `gorm:"type:varchar(100)"`
	Detail       map[string]any  `gorm:"serializer:json"`
}

// TableName returns the database table name
func (AccountEntry) TableName() string {
	return "account_entries"
}

// NewAccountEntry creates a ledger entry for an account. Amount is a positive
// magnitude for DEBT, CREDIT and PAYMENT; for ADJUSTMENT it may carry either
// sign and is stored as given.
func NewAccountEntry(accountID uuid.UUID, kind EntryKind, amount decimal.Decimal, occurredAt time.Time, reference string) (*AccountEntry, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account ID is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid entry kind: "+string(kind))
	}
	if amount.IsZero() {
		return nil, shared.ErrInvalidAmount
	}
	if kind != EntryKindAdjustment && amount.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	signed := amount
	switch kind {
	case EntryKindCredit, EntryKindPayment:
		signed = amount.Neg()
	}

	return &AccountEntry{
		BaseEntity:   shared.NewBaseEntity(),
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount.Abs(),
		SignedAmount: signed,
		OccurredAt:   occurredAt,
		Reference:    reference,
	}, nil
}

// WithDetail attaches a structured payload (invoice lines, payment method)
func (e *AccountEntry) WithDetail(detail map[string]any) *AccountEntry {
	e.Detail = detail
	return e
}

// IsDebit reports whether the entry increases the account balance
func (e *AccountEntry) IsDebit() bool {
	return e.SignedAmount.IsPositive()
}
