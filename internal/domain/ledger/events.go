package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// Event types for the account ledger
const (
	EventTypeAccountCreated      = "ledger.account.created"
	EventTypeEntryApplied        = "ledger.entry.applied"
	EventTypeAccountRecalculated = "ledger.account.recalculated"
)

// AccountCreatedEvent is raised when a new account is opened
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
}

// NewAccountCreatedEvent creates a new account created event
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, "Account", account.ID),
		Name:            account.Name,
		AccountType:     account.Type,
	}
}

// EntryAppliedEvent is raised when a ledger entry is folded into the balance
type EntryAppliedEvent struct {
	shared.BaseDomainEvent
	Kind          EntryKind       `json:"kind"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// NewEntryAppliedEvent creates a new entry applied event
func NewEntryAppliedEvent(account *Account, entry *AccountEntry, balanceBefore decimal.Decimal) *EntryAppliedEvent {
	return &EntryAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryApplied, "Account", account.ID),
		Kind:            entry.Kind,
		SignedAmount:    entry.SignedAmount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    account.CurrentBalance,
	}
}

// AccountRecalculatedEvent is raised when a recalculation rewrites the projection
type AccountRecalculatedEvent struct {
	shared.BaseDomainEvent
	Balance decimal.Decimal `json:"balance"`
}

// NewAccountRecalculatedEvent creates a new account recalculated event
func NewAccountRecalculatedEvent(account *Account) *AccountRecalculatedEvent {
	return &AccountRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountRecalculated, "Account", account.ID),
		Balance:         account.CurrentBalance,
	}
}
