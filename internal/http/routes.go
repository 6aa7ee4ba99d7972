package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
	"github.com/stewardly/ledger-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions     *service.SessionService
	Users        *service.UserAdminService
	Profiles     *service.ProfileService
	Transactions *service.TransactionService
	Inventory    *service.InventoryService
	Dashboard    *service.DashboardService

	// Optional: registered only when the deployment delegates auth.
	SSO ports.SSOProvider

	// Optional: overrides the cookie-backed state source. Dev/mock mode
	// passes a tracker-backed source here.
	StateSource SessionStateSource

	CookieDomain string
	Logger       *slog.Logger
}

// Route-level role requirements. Mutating ledger money requires treasurer
// or admin; viewing the dashboard and inventory only requires membership;
// user administration is admin-only.
var (
	memberRoles    = domainauth.Roles(domainauth.RoleMember, domainauth.RoleTreasurer, domainauth.RoleAdmin)
	treasurerRoles = domainauth.Roles(domainauth.RoleTreasurer, domainauth.RoleAdmin)
	adminRoles     = domainauth.Roles(domainauth.RoleAdmin)
)

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	src := services.StateSource
	if src == nil {
		src = &CookieStateSource{Sessions: services.Sessions}
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Sessions,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	registerAuthRoutes(mux, authHandlers)

	if services.SSO != nil {
		registerSSORoutes(mux, &SSOHandlers{
			Provider:     services.SSO,
			Sessions:     services.Sessions,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		})
	}

	mux.Handle("GET /api/nav", Nav(src))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	registerMeRoutes(mux, &MeHandlers{Profiles: services.Profiles}, src)
	registerUserRoutes(mux, &UserHandlers{Svc: services.Users}, src)
	registerTransactionRoutes(mux, &TransactionHandlers{Svc: services.Transactions}, src)
	registerInventoryRoutes(mux, &InventoryHandlers{Svc: services.Inventory}, src)

	dashboard := RequireAccess(src, memberRoles)
	mux.Handle("GET /api/dashboard", dashboard(http.HandlerFunc(
		(&DashboardHandlers{Svc: services.Dashboard}).Summary)))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Logging(logger)(Recover(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/status", h.Status)
	mux.HandleFunc("POST /api/auth/refresh", h.Refresh)
	mux.HandleFunc("POST /api/auth/reset-request", h.RequestReset)
	mux.HandleFunc("POST /api/auth/reset", h.Reset)
}

func registerSSORoutes(mux *http.ServeMux, h *SSOHandlers) {
	mux.HandleFunc("GET /auth/sso/login", h.Begin)
	mux.HandleFunc("GET /auth/sso/callback", h.Callback)
}

func registerMeRoutes(mux *http.ServeMux, h *MeHandlers, src SessionStateSource) {
	wrap := RequireAccess(src, nil)
	mux.Handle("GET /api/me", wrap(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/me", wrap(http.HandlerFunc(h.Update)))
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, src SessionStateSource) {
	wrap := RequireAccess(src, adminRoles)
	mux.Handle("GET /api/users", wrap(http.HandlerFunc(h.ListActive)))
	mux.Handle("GET /api/users/pending", wrap(http.HandlerFunc(h.ListPending)))
	mux.Handle("POST /api/users/{id}/approve", wrap(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /api/users/{id}/deny", wrap(http.HandlerFunc(h.Deny)))
	mux.Handle("PUT /api/users/{id}/role", wrap(http.HandlerFunc(h.ChangeRole)))
}

func registerTransactionRoutes(mux *http.ServeMux, h *TransactionHandlers, src SessionStateSource) {
	wrap := RequireAccess(src, treasurerRoles)
	registerCRUD(mux, crudRoutes{
		Base:       "/api/transactions",
		Create:     h.Create,
		List:       h.List,
		GetByID:    h.GetByID,
		Update:     h.Update,
		Delete:     h.Delete,
		Middleware: wrap,
	})
	mux.Handle("GET /api/transactions/summary", wrap(http.HandlerFunc(h.Summary)))
}

func registerInventoryRoutes(mux *http.ServeMux, h *InventoryHandlers, src SessionStateSource) {
	read := RequireAccess(src, memberRoles)
	mutate := RequireAccess(src, treasurerRoles)

	mux.Handle("GET /api/inventory", read(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/inventory/low-stock", read(http.HandlerFunc(h.LowStock)))
	mux.Handle("GET /api/inventory/{id}", read(http.HandlerFunc(h.GetByID)))
	mux.Handle("POST /api/inventory", mutate(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/inventory/{id}", mutate(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/inventory/{id}", mutate(http.HandlerFunc(h.Delete)))
}

// crudRoutes registers standard CRUD routes for a resource base path,
// applying Middleware if non-nil.
type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware func(http.Handler) http.Handler
}

func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty")
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base)
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}
