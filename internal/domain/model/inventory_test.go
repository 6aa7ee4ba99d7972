package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
)

func TestCreateInventoryItemRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := CreateInventoryItemRequest{Name: "Folding chairs", Category: "furniture", Quantity: 40, Unit: "pcs"}
	assert.NoError(t, valid.Validate())

	blank := CreateInventoryItemRequest{Name: "  "}
	err := blank.Validate()
	require.Error(t, err)
	assert.Equal(t, "name", apperrors.GetField(err))

	long := CreateInventoryItemRequest{Name: strings.Repeat("x", 256)}
	assert.Error(t, long.Validate())

	negative := CreateInventoryItemRequest{Name: "Candles", Quantity: -1}
	err = negative.Validate()
	require.Error(t, err)
	assert.Equal(t, "quantity", apperrors.GetField(err))
}

func TestUpdateInventoryItemRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, UpdateInventoryItemRequest{}.Validate())

	blank := " "
	assert.Error(t, UpdateInventoryItemRequest{Name: &blank}.Validate())

	negative := -3
	assert.Error(t, UpdateInventoryItemRequest{Quantity: &negative}.Validate())

	ten := 10
	assert.NoError(t, UpdateInventoryItemRequest{Quantity: &ten}.Validate())
}
