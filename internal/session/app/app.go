// Package app assembles the session service: configuration, storage,
// keys, services, HTTP, and lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/choosyhq/sessiond/internal/session/denylist"
	sessionhttp "github.com/choosyhq/sessiond/internal/session/http"
	"github.com/choosyhq/sessiond/internal/session/idp"
	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/internal/session/store"
	"github.com/choosyhq/sessiond/internal/session/store/drivers/postgres"
	"github.com/choosyhq/sessiond/internal/session/store/drivers/sqlite"
	"github.com/choosyhq/sessiond/internal/session/token"
	"github.com/choosyhq/sessiond/pkg/jwtx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the session service with its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	keys     *jwtx.Keyring
	denylist denylist.Denylist

	sessions  *service.SessionService
	providers *idp.Registry

	server *http.Server
	router *sessionhttp.Router

	stopHousekeeping context.CancelFunc
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "sessiond",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	app.keys = jwtx.NewKeyring(cfg.SignKeyMaterial, cfg.SealKeyMaterial)
	if !app.keys.Ready() {
		return nil, errors.New("SIGN_KEY and ENC_KEY must be set; run `sessionctl genkeys`")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initDenylist()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	hkCtx, cancel := context.WithCancel(slogx.WithContext(context.Background(), app.logger))
	app.stopHousekeeping = cancel
	go app.sessions.RunHousekeeping(hkCtx, app.cfg.HousekeepingInterval)

	app.logger.Info("session service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully stops the HTTP server, housekeeping, and storage.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down session service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.stopHousekeeping != nil {
		app.stopHousekeeping()
	}

	if closer, ok := app.denylist.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing denylist", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("session service stopped")
	return nil
}

// initDatabase selects the driver from the configuration and applies
// migrations. A postgres:// DATABASE_URL picks pgx; anything else falls
// back to the local SQLite file.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch {
	case strings.HasPrefix(app.cfg.DatabaseURL, "postgres://"),
		strings.HasPrefix(app.cfg.DatabaseURL, "postgresql://"):
		db, err = postgres.NewStore(context.Background(), app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
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

func (app *Application) initDenylist() {
	if app.cfg.RedisAddr == "" {
		app.denylist = denylist.Noop()
		return
	}
	app.denylist = denylist.NewRedis(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
	app.logger.Info("redis denylist enabled", "addr", app.cfg.RedisAddr)
}

func (app *Application) initServices() {
	sealer := &token.Sealer{Keys: app.keys}
	app.sessions = &service.SessionService{
		Store: app.db,
		Tokens: &token.AccessTokens{
			Keys:   app.keys,
			Sealer: sealer,
			Issuer: app.cfg.Issuer,
			TTL:    app.cfg.AccessTokenTTL,
		},
		Sealer:                sealer,
		Denylist:              app.denylist,
		RefreshTTL:            app.cfg.RefreshTokenTTL,
		MaxSessionsPerSubject: app.cfg.MaxSessionsPerSubject,
	}

	app.providers = idp.NewRegistry(&idp.WeChat{
		AppID:  app.cfg.WeChatAppID,
		Secret: app.cfg.WeChatSecret,
	})
}

func (app *Application) initHTTP() {
	app.router = sessionhttp.NewRouter(
		app.keys,
		BuildVersion,
		app.db,
		app.sessions,
		app.providers,
		app.logger,
	)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
