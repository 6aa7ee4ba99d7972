package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/stewardly/ledger-api/internal/domain/model"
	"github.com/stewardly/ledger-api/internal/service"
)

// dateLayout is the wire format for occurred_on filters.
const dateLayout = "2006-01-02"

// TransactionHandlers provides HTTP handlers for ledger transactions.
type TransactionHandlers struct {
	Svc *service.TransactionService
}

// Create records a new transaction, attributed to the acting user.
// POST /api/transactions.
func (h *TransactionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTransactionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if state := StateFromContext(r.Context()); state.Identity != nil {
		req.RecordedBy = state.Identity.ID
	}

	txn, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, txn)
}

// List returns a filtered page of transactions, newest first.
// GET /api/transactions?type=&category=&from=&to=&limit=&offset=.
func (h *TransactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseTransactionListOptions(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_filter", Err: err})
		return
	}

	txns, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		RenderError(w, err)
		return
	}
	if txns == nil {
		txns = []*model.Transaction{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

// GetByID retrieves a transaction.
// GET /api/transactions/{id}.
func (h *TransactionHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	txn, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, txn)
}

// Update applies a partial update to a transaction.
// PUT /api/transactions/{id}.
func (h *TransactionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTransactionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	txn, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, txn)
}

// Delete removes a transaction.
// DELETE /api/transactions/{id}.
func (h *TransactionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("transaction not found"),
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary aggregates ledger totals.
// GET /api/transactions/summary.
func (h *TransactionHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Svc.Summary(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func parseTransactionListOptions(r *http.Request) (model.TransactionListOptions, error) {
	var opts model.TransactionListOptions
	q := r.URL.Query()

	if raw := q.Get("type"); raw != "" {
		txnType, ok := model.ParseTransactionType(raw)
		if !ok {
			return opts, errors.New("type must be income or expense")
		}
		opts.Type = &txnType
	}
	if raw := q.Get("category"); raw != "" {
		opts.Category = &raw
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return opts, errors.New("from must be a date in YYYY-MM-DD form")
		}
		opts.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return opts, errors.New("to must be a date in YYYY-MM-DD form")
		}
		opts.To = &to
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

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
