package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/folio/internal/folio/http"
	"github.com/aussiebroadwan/folio/internal/folio/mail"
	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/redis"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the folio service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        *sqlite.Store
	blacklist store.Blacklist
	redis     *goredis.Client
	keys      *Keys
	notifier  *service.Notifier

	// Services
	authService         *service.AuthService
	profileService      *service.ProfileService
	portfolioService    *service.PortfolioService
	adminService        *service.AdminService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "folio",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initBlacklist(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keys, err := InitKeys(cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.keys = keys

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Profiles exposes the profile service to maintenance commands.
func (app *Application) Profiles() *service.ProfileService { return app.profileService }

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("folio starting", "port", app.cfg.HTTP.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			app.housekeepingService.Stop()
			app.closeStores()
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

// Shutdown drains requests, waits for queued mail and closes the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down folio...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.HTTP.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.notifier.Wait()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("folio stopped")
	return nil
}

// Close releases the stores without touching the HTTP server. Used by the
// maintenance commands, which never call Run.
func (app *Application) Close() error {
	app.notifier.Wait()
	return app.closeStores()
}

func (app *Application) closeStores() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.Database.Path, sqlite.WithClock(service.SystemClock{}.Now))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "path", app.cfg.Database.Path)
	return nil
}

// initBlacklist selects where revoked access tokens are kept.
func (app *Application) initBlacklist(ctx context.Context) error {
	switch app.cfg.Blacklist.Driver {
	case BlacklistRedis:
		rc := app.cfg.Blacklist.Redis
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		client, err := redis.Dial(ctx, rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return fmt.Errorf("failed to connect token blacklist: %w", err)
		}
		app.redis = client
		app.blacklist = redis.NewBlacklist(client, rc.Prefix, service.SystemClock{}.Now)
	default:
		app.blacklist = app.db.Blacklist()
	}

	app.logger.Info("token blacklist ready", "driver", app.cfg.Blacklist.Driver)
	return nil
}

func (app *Application) initMailer() (service.Mailer, error) {
	composer := mail.Composer{
		FrontendURL:        app.cfg.Mail.FrontendURL,
		VerificationExpiry: expiryText(app.cfg.Security.EmailVerificationTTL),
		ResetExpiry:        expiryText(app.cfg.Security.PasswordResetTTL),
	}
	if app.cfg.Mail.Driver == MailSMTP {
		m, err := mail.NewSMTPMailer(composer, app.cfg.Mail.SMTP)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize smtp mailer: %w", err)
		}
		app.logger.Info("smtp mailer configured", "host", app.cfg.Mail.SMTP.Host)
		return m, nil
	}
	app.logger.Info("mail delivery disabled; messages are logged")
	return mail.NewLogMailer(composer, app.logger), nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	mailer, err := app.initMailer()
	if err != nil {
		return err
	}
	app.notifier = service.NewNotifier(mailer, app.logger, app.cfg.Mail.Timeout)

	clock := service.SystemClock{}
	sec := app.cfg.Security
	argon := app.cfg.Password.Argon2

	app.authService = &service.AuthService{
		Store:        app.db,
		Blacklist:    app.blacklist,
		Hasher:       cryptox.NewHasher(func() cryptox.Argon2Params { return argon }, app.keys.Pepper),
		Policy:       cryptox.NewPasswordPolicy(app.cfg.Password.Policy),
		Tokens:       &service.TokenIssuer{JWT: app.keys.JWT, Clock: clock, RingCap: sec.RefreshRingCap},
		Lock:         service.NewLockGuard(clock, sec.MaxLoginAttempts, sec.LockoutDuration),
		Reset:        service.NewPasswordResetTokens(clock, sec.PasswordResetTTL),
		Verification: service.NewEmailVerificationTokens(clock, sec.EmailVerificationTTL),
		Roles:        service.NewStaticAdminList(app.cfg.Admin.Emails...),
		Notifier:     app.notifier,
		Clock:        clock,
		HashTimeout:  app.cfg.Password.HashTimeout,
	}
	app.profileService = &service.ProfileService{Store: app.db, Cipher: app.keys.Cipher, Clock: clock}
	app.portfolioService = &service.PortfolioService{Store: app.db, Clock: clock}
	app.adminService = &service.AdminService{Store: app.db, Profiles: app.profileService, Clock: clock}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.blacklist,
		clock,
		app.logger,
		app.cfg.Housekeeping.Interval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		jwtx.AccessVerifier{HS256Issuer: app.keys.JWT},
		app.blacklist,
		app.keys.Cipher,
		app.cfg.RateLimit,
		app.cfg.browserPolicy(),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.ProfileService = app.profileService
	router.PortfolioService = app.portfolioService
	router.AdminService = app.adminService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: app.cfg.HTTP.ReadHeaderTimeout,
	}
}

// expiryText renders a TTL for email copy, e.g. "24 hours" or "30 minutes".
func expiryText(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	default:
		m := int(d.Round(time.Minute) / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
}
