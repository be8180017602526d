package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nmarks/kurz/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// CachedRepository wraps a shortener.Repository with Redis caching for code
// lookups. Entities are immutable after creation commits, so a read-through
// populate-on-miss policy is sufficient; nothing ever needs invalidation.
type CachedRepository struct {
	inner  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedRepository creates a Redis-cached repository decorator.
func NewCachedRepository(inner shortener.Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		client: client,
		prefix: "shorturl:",
		ttl:    ttl,
	}
}

func (c *CachedRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if cached, err := c.client.Get(ctx, c.prefix+string(code)).Bytes(); err == nil {
		var shortURL shortener.ShortURL
		if err := json.Unmarshal(cached, &shortURL); err == nil {
			return &shortURL, nil
		}
	}

	shortURL, err := c.inner.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.cache(ctx, shortURL)

	return shortURL, nil
}

// FindByOriginalURL delegates to the inner repository; the dedup lookup
// runs once per creation and is not worth caching.
func (c *CachedRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*shortener.ShortURL, error) {
	return c.inner.FindByOriginalURL(ctx, originalURL)
}

func (c *CachedRepository) Begin(ctx context.Context) (shortener.Tx, error) {
	return c.inner.Begin(ctx)
}

func (c *CachedRepository) cache(ctx context.Context, shortURL *shortener.ShortURL) {
	payload, err := json.Marshal(shortURL)
	if err != nil {
		return
	}

	// Best effort: a failed cache write only costs the next read a trip to
	// the store.
	_ = c.client.Set(ctx, c.prefix+string(shortURL.Code), payload, c.ttl).Err()
}

// Compile-time check.
var _ shortener.Repository = (*CachedRepository)(nil)
