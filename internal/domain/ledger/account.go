package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// AccountType represents the commercial relationship of an account
type AccountType string

const (
	AccountTypeSupplier AccountType = "SUPPLIER"
	AccountTypeCustomer AccountType = "CUSTOMER"
	AccountTypeBoth     AccountType = "BOTH"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSupplier, AccountTypeCustomer, AccountTypeBoth:
		return true
	}
	return false
}

// Account is a current account whose CurrentBalance is a materialized
// projection over its append-only entry history. Positive balance means the
// counterparty owes us; negative means we owe them. The projection is only
// mutated through ApplyEntry or Rebuild, never directly by callers.
type Account struct {
	shared.BaseAggregateRoot
	Name             string          `gorm:"type:varchar(200);not null"`
	Type             AccountType     `gorm:"type:varchar(20);not null"`
	Phone            string          `gorm:"type:varchar(50)"`
	TaxNumber        string          `gorm:"type:varchar(50)"`
	CreditLimit      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	OpeningBalance   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	CurrentBalance   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TransactionCount int             `gorm:"not null;default:0"`
	PaymentCount     int             `gorm:"not null;default:0"`
	IsActive         bool            `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new account. A non-zero opening balance is realized by
// the caller as an ADJUSTMENT entry so that folding the entry history from
// zero reproduces CurrentBalance.
func NewAccount(name string, accountType AccountType, creditLimit decimal.Decimal) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name is required")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid account type: "+string(accountType))
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Credit limit cannot be negative")
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              accountType,
		CreditLimit:       creditLimit,
		OpeningBalance:    decimal.Zero,
		CurrentBalance:    decimal.Zero,
		IsActive:          true,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))
	return account, nil
}

// ApplyEntry folds one ledger entry into the materialized balance. There is
// no floor check: a negative balance is a legitimate credit state.
func (a *Account) ApplyEntry(entry *AccountEntry) error {
	if entry == nil || entry.AccountID != a.ID {
		return shared.NewDomainError("INVALID_INPUT", "Entry does not belong to this account")
	}
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is deactivated")
	}

	before := a.CurrentBalance
	a.CurrentBalance = a.CurrentBalance.Add(entry.SignedAmount)
	if entry.Kind.IsPayment() {
		a.PaymentCount++
	} else {
		a.TransactionCount++
	}

	a.AddDomainEvent(NewEntryAppliedEvent(a, entry, before))
	return nil
}

// Rebuild overwrites the materialized projection with values re-derived from
// the full entry history. Used by recalculation only.
func (a *Account) Rebuild(balance decimal.Decimal, transactionCount, paymentCount int) {
	a.CurrentBalance = balance
	a.TransactionCount = transactionCount
	a.PaymentCount = paymentCount
	a.AddDomainEvent(NewAccountRecalculatedEvent(a))
}

// OverCreditLimit reports whether the outstanding debt exceeds the limit.
// A zero limit means unlimited.
func (a *Account) OverCreditLimit() bool {
	if a.CreditLimit.IsZero() {
		return false
	}
	return a.CurrentBalance.GreaterThan(a.CreditLimit)
}

// Deactivate soft-deletes the account; entries are never physically removed
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is already deactivated")
	}
	a.IsActive = false
	return nil
}

// Activate re-enables a deactivated account
func (a *Account) Activate() {
	a.IsActive = true
}

// UpdateInfo updates descriptive fields that do not affect the ledger
func (a *Account) UpdateInfo(name, phone, taxNumber string, creditLimit decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Account name is required")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Credit limit cannot be negative")
	}
	a.Name = name
	a.Phone = phone
	a.TaxNumber = taxNumber
	a.CreditLimit = creditLimit
	return nil
}
