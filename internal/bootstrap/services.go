package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stewardly/ledger-api/config"
	redisadapter "github.com/stewardly/ledger-api/internal/adapters/redis"
	"github.com/stewardly/ledger-api/internal/data"
	"github.com/stewardly/ledger-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions     *service.SessionService
	Users        *service.UserAdminService
	Profiles     *service.ProfileService
	Transactions *service.TransactionService
	Inventory    *service.InventoryService
	Dashboard    *service.DashboardService

	// Identity carries the auth-mode specific pieces the HTTP layer
	// needs: the SSO provider and whether sessions are mock-tracked.
	Identity IdentityStack

	// Tracker is non-nil in mock auth mode only.
	Tracker *service.SessionTracker
}

// ServiceDeps contains dependencies for building services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Identity     *data.IdentityRepo
	Profiles     *data.ProfileRepo
	Transactions *data.TransactionRepo
	Inventory    *data.InventoryRepo
	Sessions     *redisadapter.SessionStore
	ResetTokens  *redisadapter.ResetTokenStore
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	return &serviceRepositories{
		Identity:     data.NewIdentityRepo(db),
		Profiles:     data.NewProfileRepo(db),
		Transactions: data.NewTransactionRepo(db),
		Inventory:    data.NewInventoryRepo(db),
		Sessions:     redisadapter.NewSessionStore(redisClient),
		ResetTokens:  redisadapter.NewResetTokenStore(redisClient),
	}
}

// NewServices wires business services using repositories and the
// configured identity stack.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	repos := buildRepositories(deps.DB, deps.RedisClient)

	resolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles:   repos.Profiles,
		AdminEmail: appCfg.Auth.AdminEmail,
		Logger:     logger,
	})

	identity, err := BuildIdentityStack(IdentityStackConfig{
		Auth:        appCfg.Auth,
		Credentials: repos.Identity,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Source:      identity.Source,
		Resolver:    resolver,
		Sessions:    repos.Sessions,
		ResetTokens: repos.ResetTokens,
		Credentials: identity.Credentials,
		Config: service.SessionServiceConfig{
			SessionTTL:    appCfg.Auth.SessionTTL,
			ResetTokenTTL: appCfg.Auth.ResetTokenTTL,
		},
		Logger: logger,
	})

	users := service.NewUserAdminService(service.UserAdminServiceOptions{
		Admin:    data.NewGuardedProfileStore(repos.Profiles),
		Profiles: repos.Profiles,
		Logger:   logger,
	})

	transactions := service.NewTransactionService(service.TransactionServiceOptions{
		Repo:   repos.Transactions,
		Logger: logger,
	})
	inventory := service.NewInventoryService(service.InventoryServiceOptions{
		Repo:   repos.Inventory,
		Logger: logger,
	})

	container := ServiceContainer{
		Sessions:     sessions,
		Users:        users,
		Profiles:     service.NewProfileService(service.ProfileServiceOptions{Profiles: repos.Profiles}),
		Transactions: transactions,
		Inventory:    inventory,
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Transactions: transactions,
			Inventory:    inventory,
		}),
		Identity: identity,
	}

	if identity.Mock {
		container.Tracker = service.NewSessionTracker(service.SessionTrackerOptions{
			Source:   identity.Source,
			Resolver: resolver,
			Logger:   logger,
		})
	}

	return container, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// RunServicesWithShutdown starts the HTTP server (and, in mock auth mode,
// the session tracker) and manages their lifecycle. It blocks until a
// shutdown signal is received.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if tracker := cfg.Services.Tracker; tracker != nil {
		tracker.Start(serviceCtx)
		logger.InfoContext(serviceCtx, "session tracker started")
	}

	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	return waitForShutdown(shutdownConfig{
		ctx:        serviceCtx,
		cancel:     cancel,
		httpServer: server,
		tracker:    cfg.Services.Tracker,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx        context.Context
	cancel     context.CancelFunc
	httpServer *http.Server
	tracker    *service.SessionTracker
	logger     *slog.Logger
}

// waitForShutdown waits for a shutdown signal, then stops services.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	cfg.logger.Info("shutting down services...")
	cfg.cancel()
	return gracefulStop(cfg)
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	if cfg.tracker != nil {
		cfg.tracker.Close()
		cfg.logger.Info("session tracker stopped")
	}

	return nil
}
