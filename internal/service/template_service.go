package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/store"
)

// List result sources
const (
	// SourceDatabase marks a list response served from Postgres.
	SourceDatabase = "db"
	// SourceCache marks a list response served from Redis.
	SourceCache = "redis"
)

// TemplateListCache defines the cache operations the service needs.
// Implemented by the Redis cache in platform/cache.
type TemplateListCache interface {
	// GetList returns the cached list, or nil on a cache miss.
	GetList(ctx context.Context) ([]*domain.TemplateItem, error)

	// SetList stores the list with the cache's TTL.
	SetList(ctx context.Context, items []*domain.TemplateItem) error

	// Invalidate drops the cached list.
	Invalidate(ctx context.Context) error
}

// MailSender defines the notification operation the service needs.
// Implemented by the SMTP sender in platform/mail.
type MailSender interface {
	Send(ctx context.Context, subject, body string) error
}

// TemplateListResult is the outcome of a List call, carrying the items
// together with where they came from and the pagination applied.
type TemplateListResult struct {
	Source string
	Items  []*domain.TemplateItem
	Total  int64
	Limit  int
	Offset int
}

// TemplateService provides template-related operations
type TemplateService interface {
	// List retrieves template items with pagination. When useCache is set,
	// the Redis cache is consulted first and populated after a database read.
	List(ctx context.Context, limit, offset int, useCache bool) (*TemplateListResult, error)

	// Get retrieves a template item by its ID.
	// Returns ErrTemplateNotFound if it does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.TemplateItem, error)

	// Create stores a new template item, invalidates the list cache and
	// sends a notification mail when a sender is configured.
	Create(
		ctx context.Context,
		title string,
		body *string,
		status domain.TemplateStatus,
	) (*domain.TemplateItem, error)

	// Update applies a partial update and returns the updated item.
	// An empty change set returns the current item unchanged.
	// Returns ErrTemplateNotFound if it does not exist.
	Update(
		ctx context.Context,
		id uuid.UUID,
		changes domain.TemplateChanges,
	) (*domain.TemplateItem, error)

	// Delete removes a template item by its ID.
	// Returns ErrTemplateNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByStatus retrieves template items with the given status.
	FindByStatus(
		ctx context.Context,
		status domain.TemplateStatus,
		limit, offset int,
	) ([]*domain.TemplateItem, error)
}

// templateServiceImpl implements the TemplateService interface
type templateServiceImpl struct {
	templateStore store.TemplateStore
	db            *sql.DB
	cache         TemplateListCache
	mailer        MailSender
	logger        *slog.Logger
}

// NewTemplateService creates a new TemplateService.
// The mailer may be nil, which disables create notifications.
// It returns an error if any other required dependency is nil.
func NewTemplateService(
	templateStore store.TemplateStore,
	db *sql.DB,
	cache TemplateListCache,
	mailer MailSender,
	logger *slog.Logger,
) (TemplateService, error) {
	if templateStore == nil {
		return nil, &TemplateServiceError{
			Operation: "create_service",
			Message:   "templateStore cannot be nil",
		}
	}
	if db == nil {
		return nil, &TemplateServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if cache == nil {
		return nil, &TemplateServiceError{
			Operation: "create_service",
			Message:   "cache cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &templateServiceImpl{
		templateStore: templateStore,
		db:            db,
		cache:         cache,
		mailer:        mailer,
		logger:        logger.With("component", "template_service"),
	}, nil
}

// List retrieves template items, consulting the cache first when requested.
// Cache failures are logged and degrade to the database path; they never
// surface to the caller.
func (s *templateServiceImpl) List(
	ctx context.Context,
	limit, offset int,
	useCache bool,
) (*TemplateListResult, error) {
	if useCache {
		cached, err := s.cache.GetList(ctx)
		if err != nil {
			s.logger.Warn("cache read failed, falling back to database",
				"error", err)
		}
		if cached != nil {
			return &TemplateListResult{
				Source: SourceCache,
				Items:  cached,
				Total:  int64(len(cached)),
				Limit:  limit,
				Offset: offset,
			}, nil
		}
	}

	items, err := s.templateStore.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list templates",
			"error", err,
			"limit", limit,
			"offset", offset)
		return nil, NewTemplateServiceError("list_templates", "failed to list templates", err)
	}

	total, err := s.templateStore.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count templates", "error", err)
		return nil, NewTemplateServiceError("list_templates", "failed to count templates", err)
	}

	if useCache {
		if err := s.cache.SetList(ctx, items); err != nil {
			s.logger.Warn("failed to populate list cache", "error", err)
		}
	}

	return &TemplateListResult{
		Source: SourceDatabase,
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Get retrieves a template item by its ID
func (s *templateServiceImpl) Get(
	ctx context.Context,
	id uuid.UUID,
) (*domain.TemplateItem, error) {
	item, err := s.templateStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("failed to retrieve template",
			"error", err,
			"template_id", id)
		return nil, NewTemplateServiceError("get_template", "failed to retrieve template", err)
	}
	return item, nil
}

// Create stores a new template item inside a transaction, then invalidates
// the list cache and sends the create notification.
func (s *templateServiceImpl) Create(
	ctx context.Context,
	title string,
	body *string,
	status domain.TemplateStatus,
) (*domain.TemplateItem, error) {
	item, err := domain.NewTemplateItem(title, body, status)
	if err != nil {
		s.logger.Warn("failed to construct template item",
			"error", err)
		return nil, NewTemplateServiceError("create_template", "invalid template data", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.templateStore.WithTx(tx)
		if err := txStore.Create(ctx, item); err != nil {
			s.logger.Error("failed to create template in transaction",
				"error", err,
				"template_id", item.ID)
			return NewTemplateServiceError("create_template", "failed to save template", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("template created",
		"template_id", item.ID,
		"status", item.Status)

	s.invalidateCache(ctx, "create")
	s.notifyCreated(ctx, item)

	return item, nil
}

// Update applies a partial update and returns the updated item
func (s *templateServiceImpl) Update(
	ctx context.Context,
	id uuid.UUID,
	changes domain.TemplateChanges,
) (*domain.TemplateItem, error) {
	item, err := s.templateStore.UpdateByID(ctx, id, changes)
	if err != nil {
		if errors.Is(err, store.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("failed to update template",
			"error", err,
			"template_id", id)
		return nil, NewTemplateServiceError("update_template", "failed to update template", err)
	}

	// Nothing changed in the store; keep the cache as-is.
	if !changes.IsEmpty() {
		s.invalidateCache(ctx, "update")
	}

	return item, nil
}

// Delete removes a template item by its ID
func (s *templateServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.templateStore.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("failed to delete template",
			"error", err,
			"template_id", id)
		return NewTemplateServiceError("delete_template", "failed to delete template", err)
	}

	s.invalidateCache(ctx, "delete")
	return nil
}

// FindByStatus retrieves template items with the given status
func (s *templateServiceImpl) FindByStatus(
	ctx context.Context,
	status domain.TemplateStatus,
	limit, offset int,
) ([]*domain.TemplateItem, error) {
	if !domain.IsValidTemplateStatus(status) {
		return nil, NewTemplateServiceError(
			"find_by_status",
			"invalid status",
			domain.ErrInvalidTemplateStatus,
		)
	}

	items, err := s.templateStore.FindByStatus(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to find templates by status",
			"error", err,
			"status", status)
		return nil, NewTemplateServiceError("find_by_status", "failed to find templates", err)
	}
	return items, nil
}

// invalidateCache drops the list cache after a mutation. Failures are logged
// and swallowed: serving a stale list for one TTL window is preferable to
// failing the write.
func (s *templateServiceImpl) invalidateCache(ctx context.Context, operation string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate list cache",
			"error", err,
			"operation", operation)
	}
}

// notifyCreated sends the create notification mail. Failures are logged and
// never fail the request.
func (s *templateServiceImpl) notifyCreated(ctx context.Context, item *domain.TemplateItem) {
	if s.mailer == nil {
		return
	}

	subject := "Template created"
	body := fmt.Sprintf(
		"Template %q (%s) was created with status %s.",
		item.Title, item.ID, item.Status,
	)

	if err := s.mailer.Send(ctx, subject, body); err != nil {
		s.logger.Warn("failed to send create notification",
			"error", err,
			"template_id", item.ID)
	}
}
