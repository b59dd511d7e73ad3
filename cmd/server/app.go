package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/stencilhq/stencil-api/internal/config"
	"github.com/stencilhq/stencil-api/internal/platform/cache"
	"github.com/stencilhq/stencil-api/internal/platform/mail"
	"github.com/stencilhq/stencil-api/internal/platform/metrics"
	"github.com/stencilhq/stencil-api/internal/platform/postgres"
	"github.com/stencilhq/stencil-api/internal/service"
	"github.com/stencilhq/stencil-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Redis client, nil-safe consumers hang off templateCache instead
	redisClient *redis.Client

	// Stores (using interfaces for proper abstraction)
	templateStore store.TemplateStore

	// Service interfaces
	templateCache   *cache.TemplateCache
	mailSender      mail.Sender
	templateService service.TemplateService

	// Observability
	metrics *metrics.Manager
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.templateStore = postgres.NewPostgresTemplateStore(db, logger)

	// Initialize the Redis list cache
	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redisClient = redisClient
	app.templateCache = cache.NewTemplateCache(
		redisClient,
		cfg.Redis.ListTTL,
		logger.With("component", "template_cache"),
	)
	logger.Info("Redis cache initialized",
		"addr", cfg.Redis.Addr,
		"list_ttl", cfg.Redis.ListTTL)

	// Initialize the mail sender when capture is configured
	if cfg.Mail.Enabled() {
		app.mailSender, err = mail.NewSMTPSender(cfg.Mail, logger.With("component", "mail_sender"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mail sender: %w", err)
		}
		logger.Info("Mail sender initialized",
			"host", cfg.Mail.Host,
			"port", cfg.Mail.Port)
	} else {
		logger.Info("Mail sender disabled, no recipient configured")
	}

	// Initialize the template service
	app.templateService, err = service.NewTemplateService(
		app.templateStore,
		db,
		app.templateCache,
		app.mailSender,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create template service: %w", err)
	}

	// Initialize Prometheus metrics
	app.metrics = metrics.NewManager("stencil")

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
