// Package cache provides an optional Redis read cache for product lookups.
// When no Redis URL is configured the rest of the system runs without it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mfrancani/patrimonio/internal/model"
)

// ErrMiss is returned by Get when the product is not cached.
var ErrMiss = errors.New("cache miss")

const defaultTTL = 5 * time.Minute

// ProductCache stores product records in Redis keyed by enterprise and id.
type ProductCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// New connects to Redis at the given URL (redis://host:port/db) and verifies
// the connection with a ping.
func New(ctx context.Context, url string, logger *slog.Logger) (*ProductCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &ProductCache{client: client, logger: logger, ttl: defaultTTL}, nil
}

func productKey(enterpriseID, id int64) string {
	return fmt.Sprintf("product:%d:%d", enterpriseID, id)
}

// Get returns the cached product, or ErrMiss when absent.
func (c *ProductCache) Get(ctx context.Context, enterpriseID, id int64) (*model.Product, error) {
	raw, err := c.client.Get(ctx, productKey(enterpriseID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		// A corrupt entry is treated as a miss so the caller falls back
		// to the store and overwrites it.
		c.logger.Warn("cache: corrupt product entry", "key", productKey(enterpriseID, id), "error", err)
		return nil, ErrMiss
	}
	return &p, nil
}

// Set stores the product with the cache TTL. Failures are logged, not
// returned; the cache is best-effort.
func (c *ProductCache) Set(ctx context.Context, p *model.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("cache: marshal product", "id", p.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, productKey(p.EnterpriseID, p.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache: set product", "id", p.ID, "error", err)
	}
}

// Invalidate drops the cached entry after a mutation.
func (c *ProductCache) Invalidate(ctx context.Context, enterpriseID, id int64) {
	if err := c.client.Del(ctx, productKey(enterpriseID, id)).Err(); err != nil {
		c.logger.Warn("cache: invalidate product", "id", id, "error", err)
	}
}

// Close releases the Redis connection.
func (c *ProductCache) Close() error {
	return c.client.Close()
}
