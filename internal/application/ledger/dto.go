package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/ledger"
)

// CreateAccountInput opens a new account. A non-zero opening balance is
// realized as an ADJUSTMENT entry dated at account creation.
type CreateAccountInput struct {
	Name           string
	Type           ledger.AccountType
	Phone          string
	TaxNumber      string
	CreditLimit    decimal.Decimal
	OpeningBalance decimal.Decimal
}

// UpdateAccountInput updates descriptive account fields
type UpdateAccountInput struct {
	Name        string
	Phone       string
	TaxNumber   string
	CreditLimit decimal.Decimal
}

// RecordEntryInput appends one ledger entry to an account
type RecordEntryInput struct {
	AccountID  uuid.UUID
	Kind       ledger.EntryKind
	Amount     decimal.Decimal
	OccurredAt time.Time
	Reference  string
	Detail     map[string]any
}

// AccountDTO is the API representation of an account
type AccountDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Phone            string          `json:"phone,omitempty"`
	TaxNumber        string          `json:"tax_number,omitempty"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	TransactionCount int             `json:"transaction_count"`
	PaymentCount     int             `json:"payment_count"`
	OverCreditLimit  bool            `json:"over_credit_limit"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
}

// EntryDTO is the API representation of a ledger entry
type EntryDTO struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	SignedAmount decimal.Decimal `json:"signed_amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Reference    string          `json:"reference,omitempty"`
	Detail       map[string]any  `json:"detail,omitempty"`
}

// ToAccountDTO maps a domain account to its API representation
func ToAccountDTO(account *ledger.Account) *AccountDTO {
	return &AccountDTO{
		ID:               account.ID,
		Name:             account.Name,
		Type:             string(account.Type),
		Phone:            account.Phone,
		TaxNumber:        account.TaxNumber,
		CreditLimit:      account.CreditLimit,
		OpeningBalance:   account.OpeningBalance,
		CurrentBalance:   account.CurrentBalance,
		TransactionCount: account.TransactionCount,
		PaymentCount:     account.PaymentCount,
		OverCreditLimit:  account.OverCreditLimit(),
		IsActive:         account.IsActive,
		CreatedAt:        account.CreatedAt,
	}
}

// ToEntryDTO maps a domain entry to its API representation
func ToEntryDTO(entry *ledger.AccountEntry) *EntryDTO {
	return &EntryDTO{
		ID:           entry.ID,
		AccountID:    entry.AccountID,
		Kind:         string(entry.Kind),
		Amount:       entry.Amount,
		SignedAmount: entry.SignedAmount,
		OccurredAt:   entry.OccurredAt,
		Reference:    entry.Reference,
		Detail:       entry.Detail,
	}
}
