package model

import (
	"strings"
	"time"

	apperrors "github.com/stewardly/ledger-api/internal/errors"
)

const maxDescriptionLen = 500

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether the transaction type is supported.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense:
		return true
	default:
		return false
	}
}

// ParseTransactionType normalizes a type string and reports whether it is supported.
func ParseTransactionType(value string) (TransactionType, bool) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(value)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// Transaction is a single financial record in the ledger.
// AmountCents is stored in integer cents to avoid float drift.
type Transaction struct {
	ID          string          `json:"id"           db:"id"`
	Type        TransactionType `json:"type"         db:"type"`
	AmountCents int64           `json:"amount_cents" db:"amount_cents"`
	Category    string          `json:"category"     db:"category"`
	Description string          `json:"description"  db:"description"`
	OccurredOn  time.Time       `json:"occurred_on"  db:"occurred_on"`
	RecordedBy  string          `json:"recorded_by"  db:"recorded_by"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"   db:"updated_at"`
}

// CreateTransactionRequest carries fields for recording a transaction.
type CreateTransactionRequest struct {
	Type        TransactionType `json:"type"`
	AmountCents int64           `json:"amount_cents"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	OccurredOn  time.Time       `json:"occurred_on"`
	RecordedBy  string          `json:"-"`
}

// Validate checks the create request.
func (r *CreateTransactionRequest) Validate() error {
	if !r.Type.Valid() {
		return apperrors.ValidationField("type", "type must be income or expense")
	}
	if r.AmountCents <= 0 {
		return apperrors.ValidationField("amount_cents", "amount must be positive")
	}
	if strings.TrimSpace(r.Category) == "" {
		return apperrors.ValidationField("category", "category is required")
	}
	if len(r.Description) > maxDescriptionLen {
		return apperrors.ValidationField("description", "description is too long")
	}
	if r.OccurredOn.IsZero() {
		return apperrors.ValidationField("occurred_on", "occurred_on is required")
	}
	return nil
}

// UpdateTransactionRequest carries optional fields for a partial update.
type UpdateTransactionRequest struct {
	Type        *TransactionType `json:"type,omitempty"`
	AmountCents *int64           `json:"amount_cents,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	OccurredOn  *time.Time       `json:"occurred_on,omitempty"`
}

// Validate checks the update request.
func (r UpdateTransactionRequest) Validate() error {
	if r.Type != nil && !r.Type.Valid() {
		return apperrors.ValidationField("type", "type must be income or expense")
	}
	if r.AmountCents != nil && *r.AmountCents <= 0 {
		return apperrors.ValidationField("amount_cents", "amount must be positive")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return apperrors.ValidationField("category", "category cannot be empty")
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		return apperrors.ValidationField("description", "description is too long")
	}
	return nil
}

// TransactionListOptions controls paging and filtering for listing transactions.
type TransactionListOptions struct {
	Limit    int
	Offset   int
	Type     *TransactionType // exact match
	Category *string          // exact match
	From     *time.Time       // occurred_on >= From
	To       *time.Time       // occurred_on <= To
}

// TransactionSummary aggregates ledger totals for the dashboard.
type TransactionSummary struct {
	IncomeCents  int64 `json:"income_cents"  db:"income_cents"`
	ExpenseCents int64 `json:"expense_cents" db:"expense_cents"`
	BalanceCents int64 `json:"balance_cents" db:"balance_cents"`
	Count        int64 `json:"count"         db:"count"`
}
