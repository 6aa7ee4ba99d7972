package httpx

import (
	"net/http"

	"github.com/stewardly/ledger-api/internal/service"
)

// DashboardHandlers serves the aggregated landing-page payload.
type DashboardHandlers struct {
	Svc *service.DashboardService
}

// Summary returns ledger totals, recent transactions, and low-stock items.
// GET /api/dashboard.
func (h *DashboardHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Svc.Summary(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
