// Package main implements the development seed command. It resets the
// templateitem table and inserts a sample row so a fresh environment has
// data to exercise the API against.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx database/sql driver

	"github.com/stencilhq/stencil-api/internal/config"
	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/platform/logger"
	"github.com/stencilhq/stencil-api/internal/platform/postgres"
	"github.com/stencilhq/stencil-api/internal/store"
)

const createTableSQL = `
CREATE TABLE templateitem (
    id UUID PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    body TEXT,
    status TEXT NOT NULL DEFAULT 'DRAFT',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT templateitem_status_check CHECK (status IN ('DRAFT', 'PUBLISHED'))
)`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := run(); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("Error closing database connection", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Recreate the table from scratch so repeated runs start clean.
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS templateitem"); err != nil {
		return fmt.Errorf("failed to drop templateitem table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create templateitem table: %w", err)
	}
	appLogger.Info("Recreated templateitem table")

	body := "Seeded template body"
	item, err := domain.NewTemplateItem("Seeded template", &body, domain.TemplateStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to build seed template: %w", err)
	}

	templateStore := postgres.NewPostgresTemplateStore(db, appLogger)
	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return templateStore.WithTx(tx).Create(ctx, item)
	})
	if err != nil {
		return fmt.Errorf("failed to insert seed template: %w", err)
	}

	appLogger.Info("Seed completed",
		"template_id", item.ID,
		"title", item.Title,
		"status", item.Status)
	fmt.Fprintln(os.Stdout, "Database seeded.")
	return nil
}
