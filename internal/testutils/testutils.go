// Package testutils provides shared helpers for integration tests that
// need a real PostgreSQL database. Tests are isolated from each other by
// running inside a transaction that is rolled back afterwards.
package testutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/store"
)

var migrationsRunOnce sync.Once

// IsIntegrationTestEnvironment reports whether integration tests can run.
// Integration tests require a DATABASE_URL environment variable pointing at
// a disposable PostgreSQL database.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// MustGetTestDatabaseURL returns the test database URL and panics if it is
// not configured. Callers should check IsIntegrationTestEnvironment first.
func MustGetTestDatabaseURL() string {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		panic("DATABASE_URL must be set for integration tests")
	}
	return url
}

// SetupTestDatabaseSchema applies the project migrations to the test
// database. Migrations run at most once per test binary.
func SetupTestDatabaseSchema(db *sql.DB) error {
	var setupErr error
	migrationsRunOnce.Do(func() {
		if err := goose.SetDialect("postgres"); err != nil {
			setupErr = fmt.Errorf("failed to set goose dialect: %w", err)
			return
		}

		projectRoot, err := findProjectRoot()
		if err != nil {
			setupErr = fmt.Errorf("failed to find project root: %w", err)
			return
		}

		migrationsDir := filepath.Join(projectRoot, "migrations")
		if _, err := os.Stat(migrationsDir); err != nil {
			setupErr = fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
			return
		}

		if err := goose.Up(db, migrationsDir); err != nil {
			setupErr = fmt.Errorf("failed to run migrations: %w", err)
		}
	})
	return setupErr
}

// findProjectRoot walks up from the working directory until it finds go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// WithTx runs a test function inside a transaction that is always rolled
// back, keeping tests isolated without truncating tables.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	defer AssertRollbackNoError(t, tx)

	fn(t, tx)
}

// AssertRollbackNoError rolls back a transaction and reports unexpected
// failures. A transaction that was already finished is fine.
func AssertRollbackNoError(t *testing.T, tx *sql.Tx) {
	t.Helper()

	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.Errorf("Failed to roll back transaction: %v", err)
	}
}

// MustInsertTemplate inserts a template item directly and returns its ID.
// It fails the test on any error.
func MustInsertTemplate(
	ctx context.Context,
	t *testing.T,
	db store.DBTX,
	title string,
	status domain.TemplateStatus,
) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, `
		INSERT INTO templateitem (id, title, body, status, created_at, updated_at)
		VALUES ($1, $2, NULL, $3, $4, $4)`,
		id, title, status, now)
	if err != nil {
		t.Fatalf("Failed to insert test template: %v", err)
	}

	return id
}
