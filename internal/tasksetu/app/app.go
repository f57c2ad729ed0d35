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

	tshttp "github.com/aussiebroadwan/tasksetu/internal/tasksetu/http"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/mail"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/metrics"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/mongo"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	mailer   service.Mailer
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Services
	tokenService        *service.TokenService
	accountService      *service.AccountService
	tenantService       *service.TenantService
	membershipService   *service.MembershipService
	passwordService     *service.PasswordService
	mfaService          *service.MFAService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *tshttp.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tasksetu",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetCost(cfg.BcryptCost)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initMetrics()
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tasksetu starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"mail", app.cfg.MailDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown drains in-flight requests, stops the cleanup worker, waits for
// queued reset emails and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tasksetu...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.passwordService.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tasksetu stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.StoreDriver {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		db, err = mongo.NewStore(ctx, mongo.Config{
			URI:         app.cfg.MongoURI,
			Database:    app.cfg.MongoDatabase,
			MaxPoolSize: uint64(max(app.cfg.MongoMaxPool, 0)),
		})
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

func (app *Application) initMailer() error {
	if app.cfg.MailDriver != "smtp" {
		app.mailer = mail.LogMailer{Logger: app.logger}
		app.logger.Warn("mail driver is log: email links are written to the log")
		return nil
	}

	m, err := mail.NewSMTPMailer(mail.Config{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.MailFrom,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = m
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	secret := []byte(app.cfg.JWTSecret)
	if len(secret) == 0 {
		// Validate only lets this through in dev. Sessions do not survive a restart.
		secret = []byte(cryptox.MustGenerateToken(cryptox.LinkTokenBytes))
		app.logger.Warn("JWT_SECRET not set, using an ephemeral signing secret")
	}

	tokens, err := service.NewTokenService(secret, app.cfg.JWTIssuer, app.cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	links := service.Links{BaseURL: app.cfg.AppBaseURL}

	app.accountService = &service.AccountService{
		Store:     app.db,
		Tokens:    tokens,
		Mailer:    app.mailer,
		Metrics:   app.metrics,
		Links:     links,
		VerifyTTL: app.cfg.VerifyTTL,
	}
	app.tenantService = &service.TenantService{Store: app.db}
	app.membershipService = &service.MembershipService{
		Store:     app.db,
		Mailer:    app.mailer,
		Metrics:   app.metrics,
		Links:     links,
		InviteTTL: app.cfg.InviteTTL,
	}
	app.passwordService = &service.PasswordService{
		Store:    app.db,
		Mailer:   app.mailer,
		Metrics:  app.metrics,
		Links:    links,
		ResetTTL: app.cfg.ResetTTL,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: "TaskSetu",
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.InviteRetention,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := tshttp.NewRouter(app.db, app.logger, app.metrics, app.registry)

	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.TenantService = app.tenantService
	router.MembershipService = app.membershipService
	router.PasswordService = app.passwordService
	router.MFAService = app.mfaService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
