package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/platform/postgres"
	"github.com/stencilhq/stencil-api/internal/store"
	"github.com/stencilhq/stencil-api/internal/testutils"
)

// testTimeout is the maximum time allowed for a test to run
const testTimeout = 5 * time.Second

// testDB holds a shared database connection for all tests in this package.
var testDB *sql.DB

// TestMain sets up the database once for all tests in the package.
func TestMain(m *testing.M) {
	// Skip if not in integration test environment
	if !testutils.IsIntegrationTestEnvironment() {
		os.Exit(0)
	}

	dbURL := testutils.MustGetTestDatabaseURL()
	var err error
	testDB, err = sql.Open("pgx", dbURL)
	if err != nil {
		fmt.Printf("Failed to open database connection: %v\n", err)
		os.Exit(1)
	}

	testDB.SetMaxOpenConns(5)
	testDB.SetMaxIdleConns(5)
	testDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := testDB.PingContext(ctx); err != nil {
		fmt.Printf("Failed to ping database: %v\n", err)
		os.Exit(1)
	}

	if err := testutils.SetupTestDatabaseSchema(testDB); err != nil {
		fmt.Printf("Failed to setup test database schema: %v\n", err)
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := testDB.Close(); err != nil {
		fmt.Printf("Failed to close database connection in TestMain: %v\n", err)
	}

	os.Exit(exitCode)
}

func newTestContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), testTimeout)
}

func createTestTemplate(t *testing.T) *domain.TemplateItem {
	t.Helper()

	body := "Integration test body"
	item, err := domain.NewTemplateItem("Integration test template", &body, domain.TemplateStatusDraft)
	require.NoError(t, err, "Failed to create test template")
	return item
}

func TestNewPostgresTemplateStore(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		templateStore := postgres.NewPostgresTemplateStore(tx, nil)

		assert.NotNil(t, templateStore, "PostgresTemplateStore should be created successfully")

		var _ store.TemplateStore = templateStore
	})
}

func TestTemplateStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)
		item := createTestTemplate(t)

		err := templateStore.Create(ctx, item)
		require.NoError(t, err, "Create should succeed for a valid template")

		got, err := templateStore.GetByID(ctx, item.ID)
		require.NoError(t, err, "GetByID should find the created template")
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, item.Title, got.Title)
		require.NotNil(t, got.Body)
		assert.Equal(t, *item.Body, *got.Body)
		assert.Equal(t, domain.TemplateStatusDraft, got.Status)

		// Duplicate ID is rejected
		err = templateStore.Create(ctx, item)
		assert.ErrorIs(t, err, store.ErrDuplicate, "creating the same ID twice should conflict")

		// Invalid data never reaches the database
		invalid := *item
		invalid.Title = ""
		err = templateStore.Create(ctx, &invalid)
		assert.ErrorIs(t, err, domain.ErrEmptyTemplateTitle)
	})
}

func TestTemplateStoreGetByIDNotFound(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)

		_, err := templateStore.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrTemplateNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestTemplateStoreList(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)

		// Empty store lists as an empty slice, not nil
		items, err := templateStore.List(ctx, 100, 0)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)

		// Insert rows with distinct creation times so ordering is deterministic
		for i := 0; i < 5; i++ {
			item := createTestTemplate(t)
			item.Title = fmt.Sprintf("Template %d", i)
			item.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
			item.UpdatedAt = item.CreatedAt
			require.NoError(t, templateStore.Create(ctx, item))
		}

		// Newest first
		items, err = templateStore.List(ctx, 100, 0)
		require.NoError(t, err)
		require.Len(t, items, 5)
		assert.Equal(t, "Template 4", items[0].Title)
		assert.Equal(t, "Template 0", items[4].Title)

		// Pagination
		items, err = templateStore.List(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Template 3", items[0].Title)
		assert.Equal(t, "Template 2", items[1].Title)

		// Offset past the end
		items, err = templateStore.List(ctx, 100, 10)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestTemplateStoreFindByStatus(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)

		draft := createTestTemplate(t)
		require.NoError(t, templateStore.Create(ctx, draft))

		published := createTestTemplate(t)
		published.Status = domain.TemplateStatusPublished
		require.NoError(t, templateStore.Create(ctx, published))

		items, err := templateStore.FindByStatus(ctx, domain.TemplateStatusPublished, 100, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, published.ID, items[0].ID)

		items, err = templateStore.FindByStatus(ctx, domain.TemplateStatusDraft, 100, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, draft.ID, items[0].ID)
	})
}

func TestTemplateStoreUpdateByID(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)
		item := createTestTemplate(t)
		require.NoError(t, templateStore.Create(ctx, item))

		// Partial update: only the title changes
		newTitle := "Renamed template"
		updated, err := templateStore.UpdateByID(ctx, item.ID, domain.TemplateChanges{
			Title: &newTitle,
		})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		require.NotNil(t, updated.Body, "untouched body should survive the update")
		assert.Equal(t, *item.Body, *updated.Body)
		assert.Equal(t, item.Status, updated.Status)
		assert.True(t, updated.UpdatedAt.After(item.UpdatedAt),
			"UpdatedAt should be bumped by an applied change")

		// Status-only update
		published := domain.TemplateStatusPublished
		updated, err = templateStore.UpdateByID(ctx, item.ID, domain.TemplateChanges{
			Status: &published,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TemplateStatusPublished, updated.Status)
		assert.Equal(t, newTitle, updated.Title)

		// Empty change set returns the current row untouched
		before, err := templateStore.GetByID(ctx, item.ID)
		require.NoError(t, err)
		updated, err = templateStore.UpdateByID(ctx, item.ID, domain.TemplateChanges{})
		require.NoError(t, err)
		assert.Equal(t, before.UpdatedAt.UTC(), updated.UpdatedAt.UTC(),
			"empty change set should not bump UpdatedAt")

		// Invalid change set is rejected before touching the database
		empty := ""
		_, err = templateStore.UpdateByID(ctx, item.ID, domain.TemplateChanges{Title: &empty})
		assert.ErrorIs(t, err, domain.ErrEmptyTemplateTitle)

		// Unknown ID
		_, err = templateStore.UpdateByID(ctx, uuid.New(), domain.TemplateChanges{Title: &newTitle})
		assert.ErrorIs(t, err, store.ErrTemplateNotFound)
	})
}

func TestTemplateStoreDeleteByID(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)
		item := createTestTemplate(t)
		require.NoError(t, templateStore.Create(ctx, item))

		err := templateStore.DeleteByID(ctx, item.ID)
		require.NoError(t, err)

		_, err = templateStore.GetByID(ctx, item.ID)
		assert.ErrorIs(t, err, store.ErrTemplateNotFound)

		// Deleting again reports not found
		err = templateStore.DeleteByID(ctx, item.ID)
		assert.ErrorIs(t, err, store.ErrTemplateNotFound)
	})
}

func TestTemplateStoreExistsAndCount(t *testing.T) {
	t.Parallel()

	testutils.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := newTestContext(t)
		defer cancel()

		templateStore := postgres.NewPostgresTemplateStore(tx, nil)

		count, err := templateStore.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		item := createTestTemplate(t)
		require.NoError(t, templateStore.Create(ctx, item))

		exists, err := templateStore.Exists(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = templateStore.Exists(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, exists)

		count, err = templateStore.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestTemplateStoreWithTxCommit(t *testing.T) {
	t.Parallel()

	// This test manages its own transaction to exercise the WithTx path the
	// service layer uses, so it cleans up after itself instead of relying on
	// WithTx-based isolation.
	ctx, cancel := newTestContext(t)
	defer cancel()

	baseStore := postgres.NewPostgresTemplateStore(testDB, nil)
	item := createTestTemplate(t)

	err := store.RunInTransaction(ctx, testDB, func(ctx context.Context, tx *sql.Tx) error {
		return baseStore.WithTx(tx).Create(ctx, item)
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := testDB.ExecContext(context.Background(),
			"DELETE FROM templateitem WHERE id = $1", item.ID)
		if err != nil {
			t.Errorf("Failed to clean up committed template: %v", err)
		}
	})

	got, err := baseStore.GetByID(ctx, item.ID)
	require.NoError(t, err, "committed transaction should be visible")
	assert.Equal(t, item.ID, got.ID)
}

func TestTemplateStoreWithTxRollback(t *testing.T) {
	t.Parallel()

	ctx, cancel := newTestContext(t)
	defer cancel()

	baseStore := postgres.NewPostgresTemplateStore(testDB, nil)
	item := createTestTemplate(t)

	failErr := fmt.Errorf("boom")
	err := store.RunInTransaction(ctx, testDB, func(ctx context.Context, tx *sql.Tx) error {
		if err := baseStore.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		return failErr
	})
	require.Error(t, err)

	_, err = baseStore.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrTemplateNotFound,
		"rolled back insert should not be visible")
}
