// Package app initializes and runs the service. It loads configuration,
// sets up logging, storage, the redirect cache, token signing and
// routing, and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chote-app/chote/internal/auth"
	"github.com/chote-app/chote/internal/cache"
	"github.com/chote-app/chote/internal/config"
	"github.com/chote-app/chote/internal/db/memorystorage"
	"github.com/chote-app/chote/internal/db/postgresdb"
	"github.com/chote-app/chote/internal/db/storage"
	"github.com/chote-app/chote/internal/hasher"
	"github.com/chote-app/chote/internal/logger"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/router"
	"github.com/chote-app/chote/internal/service"
	"github.com/chote-app/chote/internal/shortcode"
	"github.com/chote-app/chote/internal/token"
)

// App bundles the configuration, storage backend, optional cache and
// HTTP handler needed to run the shortener.
type App struct {
	cfg           *config.Config
	db            storage.Storage
	redirectCache *cache.RedirectCache
	httpHandler   http.Handler
}

// New builds a fully wired App:
// - loads and validates configuration
// - initializes the logger
// - selects Postgres or in-memory storage
// - connects the optional Redis redirect cache
// - constructs the token service, hasher, code generator and routes
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	if err = logger.Init(app.cfg.LogLevel); err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := token.New([]byte(app.cfg.TokenSecret), app.cfg.TokenAlgorithm, app.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	var redirectCache service.RedirectCache
	if app.cfg.RedisAddr != "" {
		app.redirectCache, err = cache.New(context.Background(), app.cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connecting redirect cache: %w", err)
		}
		redirectCache = app.redirectCache
	}

	svc, err := service.New(
		app.db,
		hasher.New(),
		tokens,
		shortcode.New(),
		redirectCache,
		app.cfg.ShortURLBase,
		app.cfg.EmailDomains,
	)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		svc,
		auth.New(app.db, tokens),
		app.cfg.DocsURL,
	)

	return app, nil
}

// Run starts the HTTP server and blocks until a shutdown signal or a
// server error. On shutdown it drains in-flight requests and closes the
// storage and cache connections.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing connections and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if a.redirectCache != nil {
			if err := a.redirectCache.Close(); err != nil {
				logger.Log.Debugln("Error closing the redirect cache: ", zap.Error(err))
			}
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)
	}

	return memorystorage.New()
}
