package httpx

import (
	"errors"
	"net/http"

	"github.com/stewardly/ledger-api/internal/domain/model"
	"github.com/stewardly/ledger-api/internal/service"
)

// InventoryHandlers provides HTTP handlers for inventory items.
type InventoryHandlers struct {
	Svc *service.InventoryService
}

// Create adds a new inventory item.
// POST /api/inventory.
func (h *InventoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInventoryItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

// List returns a filtered page of items, by name.
// GET /api/inventory?q=&category=&location=&limit=&offset=.
func (h *InventoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseInventoryListOptions(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_filter", Err: err})
		return
	}

	items, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		RenderError(w, err)
		return
	}
	if items == nil {
		items = []*model.InventoryItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetByID retrieves an item.
// GET /api/inventory/{id}.
func (h *InventoryHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	item, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// Update applies a partial update to an item.
// PUT /api/inventory/{id}.
func (h *InventoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateInventoryItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// Delete removes an item.
// DELETE /api/inventory/{id}.
func (h *InventoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("inventory item not found"),
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LowStock lists items at or below the threshold.
// GET /api/inventory/low-stock?threshold=.
func (h *InventoryHandlers) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := parseIntParam(r.URL.Query().Get("threshold"))
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_filter",
			Err:     errors.New("threshold must be an integer"),
		})
		return
	}

	items, err := h.Svc.LowStock(r.Context(), threshold)
	if err != nil {
		RenderError(w, err)
		return
	}
	if items == nil {
		items = []*model.InventoryItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func parseInventoryListOptions(r *http.Request) (model.InventoryListOptions, error) {
	var opts model.InventoryListOptions
	q := r.URL.Query()

	if raw := q.Get("q"); raw != "" {
		opts.Q = &raw
	}
	if raw := q.Get("category"); raw != "" {
		opts.Category = &raw
	}
	if raw := q.Get("location"); raw != "" {
		opts.Location = &raw
	}

	var err error
	if opts.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		return opts, errors.New("limit must be an integer")
	}
	if opts.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		return opts, errors.New("offset must be an integer")
	}
	return opts, nil
}
