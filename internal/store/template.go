package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stencilhq/stencil-api/internal/domain"
)

// TemplateStore defines the interface for template item data persistence.
// It is the data-access contract every scaffolded resource repeats: create,
// fetch by ID, paginated listing, field-equality filtering, partial update,
// delete and existence check.
type TemplateStore interface {
	// Create saves a new template item to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain TemplateItem if data is invalid.
	Create(ctx context.Context, item *domain.TemplateItem) error

	// GetByID retrieves a template item by its unique ID.
	// Returns ErrTemplateNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TemplateItem, error)

	// List retrieves template items with pagination, newest first.
	// Returns an empty slice if the store is empty.
	List(ctx context.Context, limit, offset int) ([]*domain.TemplateItem, error)

	// FindByStatus retrieves all template items with the specified status.
	// Returns an empty slice if no items match the criteria.
	FindByStatus(
		ctx context.Context,
		status domain.TemplateStatus,
		limit, offset int,
	) ([]*domain.TemplateItem, error)

	// UpdateByID applies a partial update to an existing item and returns
	// the updated row. Nil fields in changes are left untouched; UpdatedAt
	// is bumped whenever at least one field is applied.
	// Returns ErrTemplateNotFound if the item does not exist.
	UpdateByID(
		ctx context.Context,
		id uuid.UUID,
		changes domain.TemplateChanges,
	) (*domain.TemplateItem, error)

	// DeleteByID removes a template item by its ID.
	// Returns ErrTemplateNotFound if the item does not exist.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Exists reports whether a template item with the given ID is present.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Count returns the total number of template items in the store.
	Count(ctx context.Context) (int64, error)

	// WithTx returns a new TemplateStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TemplateStore
}
