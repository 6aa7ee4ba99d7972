package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/stewardly/ledger-api/internal/errors"
)

const maxItemNameLen = 255

// InventoryItem is a tracked physical asset or supply.
type InventoryItem struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Category  string    `json:"category"   db:"category"`
	Quantity  int       `json:"quantity"   db:"quantity"`
	Unit      string    `json:"unit"       db:"unit"`
	Location  string    `json:"location"   db:"location"`
	Notes     string    `json:"notes"      db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateInventoryItemRequest carries fields for adding an item.
type CreateInventoryItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// Validate checks the create request.
func (r *CreateInventoryItemRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxItemNameLen {
		return apperrors.ValidationField("name", "name is too long")
	}
	if r.Quantity < 0 {
		return apperrors.ValidationField("quantity", "quantity cannot be negative")
	}
	return nil
}

// UpdateInventoryItemRequest carries optional fields for a partial update.
type UpdateInventoryItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// Validate checks the update request.
func (r UpdateInventoryItemRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return apperrors.ValidationField("name", "name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxItemNameLen {
			return apperrors.ValidationField("name", "name is too long")
		}
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		return apperrors.ValidationField("quantity", "quantity cannot be negative")
	}
	return nil
}

// InventoryListOptions controls paging and filtering for listing items.
type InventoryListOptions struct {
	Limit    int
	Offset   int
	Q        *string // substring match on name (ILIKE)
	Category *string // exact match
	Location *string // exact match
}
