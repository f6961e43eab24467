package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/billing"
	httpapi "github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/http"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/notify"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store/drivers/sqlite"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the tenant workflow service with all its
// dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	signer     *sessionx.Signer
	dispatcher *notify.Dispatcher

	resolverService     *service.ResolverService
	authService         *service.AuthService
	tenantService       *service.TenantService
	membershipService   *service.MembershipService
	workspaceService    *service.WorkspaceService
	linkService         *service.LinkService
	contractService     *service.ContractService
	employeeService     *service.EmployeeService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "saas-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("SAAS_SESSION_SECRET is required")
	}
	signer, err := sessionx.NewSigner([]byte(cfg.SessionSecret), cfg.SessionIssuer, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.dispatcher.Start()
	app.housekeepingService.Start()

	app.logger.Info("saas service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down saas service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.dispatcher.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("saas service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	var billingSource billing.Source
	if app.cfg.BillingURL != "" {
		billingSource = billing.NewHTTPSource(app.cfg.BillingURL, app.cfg.BillingAPIKey)
		app.logger.Info("entitlements served from billing service", "url", app.cfg.BillingURL)
	} else {
		billingSource = &billing.StaticSource{Plans: billing.DefaultPlans()}
		app.logger.Info("entitlements served from the static plan table")
	}

	var sink notify.Sink
	if app.cfg.NotifyURL != "" {
		sink = notify.NewHTTPSink(app.cfg.NotifyURL, app.cfg.NotifyAPIKey)
	} else {
		sink = &notify.LogSink{Logger: app.logger}
	}
	app.dispatcher = notify.NewDispatcher(sink, app.logger)

	app.resolverService = &service.ResolverService{Store: app.db, Billing: billingSource}
	app.authService = &service.AuthService{Store: app.db}
	app.tenantService = &service.TenantService{Store: app.db}
	app.membershipService = &service.MembershipService{
		Store:      app.db,
		Dispatcher: app.dispatcher,
		InviteTTL:  app.cfg.InviteTTL,
	}
	app.workspaceService = &service.WorkspaceService{Store: app.db}
	app.linkService = &service.LinkService{Store: app.db, Dispatcher: app.dispatcher}
	app.contractService = &service.ContractService{Store: app.db, Dispatcher: app.dispatcher}
	app.employeeService = &service.EmployeeService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.ResolverService = app.resolverService
	router.AuthService = app.authService
	router.TenantService = app.tenantService
	router.MembershipService = app.membershipService
	router.WorkspaceService = app.workspaceService
	router.LinkService = app.linkService
	router.ContractService = app.contractService
	router.EmployeeService = app.employeeService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
