package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/platform/logger"
	"github.com/stencilhq/stencil-api/internal/store"
)

// PostgresTemplateStore implements the store.TemplateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTemplateStore creates a new PostgreSQL implementation of the TemplateStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

// Ensure PostgresTemplateStore implements store.TemplateStore interface
var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

// WithTx implements store.TemplateStore.WithTx
// It returns a new store bound to the given transaction so a service can run
// multiple operations atomically.
func (s *PostgresTemplateStore) WithTx(tx *sql.Tx) store.TemplateStore {
	return &PostgresTemplateStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TemplateStore.Create
// It saves a new template item to the database, handling domain validation.
// Returns validation errors from the domain TemplateItem if data is invalid.
// Returns store.ErrDuplicate if an item with the same ID already exists.
func (s *PostgresTemplateStore) Create(ctx context.Context, item *domain.TemplateItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("template validation failed during create",
			slog.String("error", err.Error()),
			slog.String("template_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO templateitem (id, title, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Title,
		item.Body,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate template ID during creation",
				slog.String("error", err.Error()),
				slog.String("template_id", item.ID.String()))
			return fmt.Errorf("%w: template with ID %s already exists",
				store.ErrDuplicate, item.ID)
		}

		log.Error("failed to create template",
			slog.String("error", err.Error()),
			slog.String("template_id", item.ID.String()))
		return MapError(err)
	}

	log.Info("template created successfully",
		slog.String("template_id", item.ID.String()),
		slog.String("status", string(item.Status)))
	return nil
}

// GetByID implements store.TemplateStore.GetByID
// It retrieves a template item by its unique ID.
// Returns store.ErrTemplateNotFound if the item does not exist.
func (s *PostgresTemplateStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.TemplateItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving template by ID", slog.String("template_id", id.String()))

	query := `
		SELECT id, title, body, status, created_at, updated_at
		FROM templateitem
		WHERE id = $1
	`

	item, err := scanTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("template not found", slog.String("template_id", id.String()))
			return nil, store.ErrTemplateNotFound
		}
		log.Error("failed to get template by ID",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return nil, err
	}

	log.Debug("template retrieved successfully",
		slog.String("template_id", id.String()),
		slog.String("status", string(item.Status)))
	return item, nil
}

// List implements store.TemplateStore.List
// It retrieves template items with pagination, newest first.
// Returns an empty slice if the store is empty.
func (s *PostgresTemplateStore) List(
	ctx context.Context,
	limit, offset int,
) ([]*domain.TemplateItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	log.Debug("listing templates",
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := `
		SELECT id, title, body, status, created_at, updated_at
		FROM templateitem
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return s.queryTemplates(ctx, log, query, limit, offset)
}

// FindByStatus implements store.TemplateStore.FindByStatus
// It retrieves all template items with the specified status.
// Returns an empty slice if no items match the criteria.
func (s *PostgresTemplateStore) FindByStatus(
	ctx context.Context,
	status domain.TemplateStatus,
	limit, offset int,
) ([]*domain.TemplateItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	log.Debug("finding templates by status",
		slog.String("status", string(status)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := `
		SELECT id, title, body, status, created_at, updated_at
		FROM templateitem
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return s.queryTemplates(ctx, log, query, status, limit, offset)
}

// UpdateByID implements store.TemplateStore.UpdateByID
// It applies a partial update to an existing item and returns the updated row.
// Nil fields in changes are left untouched; UpdatedAt is bumped whenever at
// least one field is applied.
// Returns store.ErrTemplateNotFound if the item does not exist.
// Returns validation errors if the populated change fields are invalid.
func (s *PostgresTemplateStore) UpdateByID(
	ctx context.Context,
	id uuid.UUID,
	changes domain.TemplateChanges,
) (*domain.TemplateItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := changes.Validate(); err != nil {
		log.Warn("template validation failed during update",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return nil, err
	}

	// An empty change set is a read: return the current row untouched.
	if changes.IsEmpty() {
		log.Debug("empty change set, returning current row",
			slog.String("template_id", id.String()))
		return s.GetByID(ctx, id)
	}

	// Build the SET clause from the populated fields only.
	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if changes.Title != nil {
		args = append(args, *changes.Title)
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", len(args)))
	}
	if changes.Body != nil {
		args = append(args, *changes.Body)
		setClauses = append(setClauses, fmt.Sprintf("body = $%d", len(args)))
	}
	if changes.Status != nil {
		args = append(args, *changes.Status)
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, time.Now().UTC())
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE templateitem
		SET %s
		WHERE id = $%d
		RETURNING id, title, body, status, created_at, updated_at
	`, strings.Join(setClauses, ", "), len(args))

	item, err := scanTemplate(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("template not found for update",
				slog.String("template_id", id.String()))
			return nil, store.ErrTemplateNotFound
		}
		log.Error("failed to update template",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("template updated successfully",
		slog.String("template_id", id.String()),
		slog.String("status", string(item.Status)))
	return item, nil
}

// DeleteByID implements store.TemplateStore.DeleteByID
// It removes a template item by its ID.
// Returns store.ErrTemplateNotFound if the item does not exist.
func (s *PostgresTemplateStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("deleting template", slog.String("template_id", id.String()))

	query := `DELETE FROM templateitem WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete template",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("template not found for delete",
			slog.String("template_id", id.String()))
		return store.ErrTemplateNotFound
	}

	log.Info("template deleted successfully",
		slog.String("template_id", id.String()))
	return nil
}

// Exists implements store.TemplateStore.Exists
// It reports whether a template item with the given ID is present.
func (s *PostgresTemplateStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT EXISTS (SELECT 1 FROM templateitem WHERE id = $1)`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		log.Error("failed to check template existence",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return false, err
	}

	log.Debug("checked template existence",
		slog.String("template_id", id.String()),
		slog.Bool("exists", exists))
	return exists, nil
}

// Count implements store.TemplateStore.Count
// It returns the total number of template items in the store.
func (s *PostgresTemplateStore) Count(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT COUNT(*) FROM templateitem`

	var count int64
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		log.Error("failed to count templates",
			slog.String("error", err.Error()))
		return 0, err
	}

	return count, nil
}

// queryTemplates runs a query returning template rows and scans them into
// domain objects. Returns an empty slice instead of nil when nothing matches.
func (s *PostgresTemplateStore) queryTemplates(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.TemplateItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query templates",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.TemplateItem{}
	for rows.Next() {
		item, err := scanTemplate(rows)
		if err != nil {
			log.Error("failed to scan template row",
				slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("queried templates", slog.Int("count", len(items)))
	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTemplate scans one template row into a domain object.
func scanTemplate(row rowScanner) (*domain.TemplateItem, error) {
	var item domain.TemplateItem
	var body sql.NullString
	var status string

	err := row.Scan(
		&item.ID,
		&item.Title,
		&body,
		&status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if body.Valid {
		item.Body = &body.String
	}
	item.Status = domain.TemplateStatus(status)

	return &item, nil
}

// normalizePage clamps pagination parameters to sane values.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
