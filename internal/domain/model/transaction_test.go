package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
)

func validCreateTransaction() *CreateTransactionRequest {
	return &CreateTransactionRequest{
		Type:        TransactionIncome,
		AmountCents: 2500,
		Category:    "donation",
		Description: "Sunday collection",
		OccurredOn:  time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseTransactionType(t *testing.T) {
	t.Parallel()

	got, ok := ParseTransactionType(" Income ")
	require.True(t, ok)
	assert.Equal(t, TransactionIncome, got)

	_, ok = ParseTransactionType("transfer")
	assert.False(t, ok)
}

func TestCreateTransactionRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*CreateTransactionRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*CreateTransactionRequest) {}},
		{
			name:    "bad type",
			mutate:  func(r *CreateTransactionRequest) { r.Type = "transfer" },
			wantErr: "type",
		},
		{
			name:    "zero amount",
			mutate:  func(r *CreateTransactionRequest) { r.AmountCents = 0 },
			wantErr: "amount_cents",
		},
		{
			name:    "negative amount",
			mutate:  func(r *CreateTransactionRequest) { r.AmountCents = -100 },
			wantErr: "amount_cents",
		},
		{
			name:    "blank category",
			mutate:  func(r *CreateTransactionRequest) { r.Category = "  " },
			wantErr: "category",
		},
		{
			name:    "long description",
			mutate:  func(r *CreateTransactionRequest) { r.Description = strings.Repeat("x", 501) },
			wantErr: "description",
		},
		{
			name:    "missing date",
			mutate:  func(r *CreateTransactionRequest) { r.OccurredOn = time.Time{} },
			wantErr: "occurred_on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validCreateTransaction()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantErr, apperrors.GetField(err))
		})
	}
}

func TestUpdateTransactionRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, UpdateTransactionRequest{}.Validate())

	badType := TransactionType("transfer")
	assert.Error(t, UpdateTransactionRequest{Type: &badType}.Validate())

	zero := int64(0)
	assert.Error(t, UpdateTransactionRequest{AmountCents: &zero}.Validate())

	blank := " "
	assert.Error(t, UpdateTransactionRequest{Category: &blank}.Validate())
}
