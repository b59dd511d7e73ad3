package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/platform/logger"
)

// templateListKey is the Redis key under which the template list is cached.
// Kept identical for every page so a single invalidation covers the resource.
const templateListKey = "test:template"

// DefaultListTTL bounds how stale a cached list can get. Mutations
// invalidate eagerly; the TTL is the backstop for missed invalidations.
const DefaultListTTL = 30 * time.Second

// TemplateCache caches template list results in Redis as JSON.
// All methods degrade gracefully: a Redis failure is reported to the caller
// as an error, but callers are expected to log it and fall through to the
// database rather than fail the request.
type TemplateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewTemplateCache creates a TemplateCache with the given client and TTL.
// A non-positive TTL falls back to DefaultListTTL.
// If logger is nil, a default logger will be used.
func NewTemplateCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *TemplateCache {
	if client == nil {
		panic("client cannot be nil")
	}

	if ttl <= 0 {
		ttl = DefaultListTTL
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TemplateCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "template_cache")),
	}
}

// GetList returns the cached template list, or nil on a cache miss.
func (c *TemplateCache) GetList(ctx context.Context) ([]*domain.TemplateItem, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	data, err := c.client.Get(ctx, templateListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		log.Debug("template list cache miss", slog.String("key", templateListKey))
		return nil, nil
	}
	if err != nil {
		log.Warn("failed to read template list cache",
			slog.String("error", err.Error()),
			slog.String("key", templateListKey))
		return nil, err
	}

	var items []*domain.TemplateItem
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt entry behaves like a miss; the next SetList overwrites it.
		log.Warn("failed to decode template list cache",
			slog.String("error", err.Error()),
			slog.String("key", templateListKey))
		return nil, nil
	}

	log.Debug("template list cache hit",
		slog.String("key", templateListKey),
		slog.Int("count", len(items)))
	return items, nil
}

// SetList stores the template list under the list key with the configured TTL.
func (c *TemplateCache) SetList(ctx context.Context, items []*domain.TemplateItem) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	data, err := json.Marshal(items)
	if err != nil {
		log.Warn("failed to encode template list for cache",
			slog.String("error", err.Error()))
		return err
	}

	if err := c.client.Set(ctx, templateListKey, data, c.ttl).Err(); err != nil {
		log.Warn("failed to write template list cache",
			slog.String("error", err.Error()),
			slog.String("key", templateListKey))
		return err
	}

	log.Debug("template list cached",
		slog.String("key", templateListKey),
		slog.Int("count", len(items)))
	return nil
}

// Invalidate drops the cached template list. Called after every mutation.
func (c *TemplateCache) Invalidate(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if err := c.client.Del(ctx, templateListKey).Err(); err != nil {
		log.Warn("failed to invalidate template list cache",
			slog.String("error", err.Error()),
			slog.String("key", templateListKey))
		return err
	}

	log.Debug("template list cache invalidated", slog.String("key", templateListKey))
	return nil
}
