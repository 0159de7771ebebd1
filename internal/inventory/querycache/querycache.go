package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

type TTLClass int

const (
	TTLItem TTLClass = iota
	TTLList
	TTLAggregate
)

type TTLs struct {
	Item      time.Duration
	List      time.Duration
	Aggregate time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Item:      10 * time.Minute,
		List:      5 * time.Minute,
		Aggregate: 5 * time.Minute,
	}
}

// Cache is a best-effort read-through layer. Backend failures are logged
// and surface as misses or no-ops; they never fail the caller.
type Cache struct {
	backend cache.Backend
	ttl     TTLs
	timeout time.Duration
	logger  logger.ZapLogger
}

func New(backend cache.Backend, ttl TTLs, timeout time.Duration, log logger.ZapLogger) *Cache {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Cache{
		backend: backend,
		ttl:     ttl,
		timeout: timeout,
		logger:  log,
	}
}

func (c *Cache) ttlFor(class TTLClass) time.Duration {
	switch class {
	case TTLItem:
		return c.ttl.Item
	case TTLList:
		return c.ttl.List
	default:
		return c.ttl.Aggregate
	}
}

// Get decodes the entry at key into dst and reports whether it was a hit.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.backend == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("cache entry undecodable, dropping", zap.String("key", key), zap.Error(err))
		_ = c.backend.Del(ctx, key)
		return false
	}

	c.logger.Debug("cache hit", zap.String("key", key))
	return true
}

func (c *Cache) Put(ctx context.Context, key string, value any, class TTLClass) {
	if c == nil || c.backend == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.backend.Set(ctx, key, raw, c.ttlFor(class)); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.backend == nil || len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.backend.Del(ctx, keys...); err != nil {
		c.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	if c == nil || c.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.backend.DelPattern(ctx, pattern)
	if err != nil {
		c.logger.Warn("cache pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	c.logger.Debug("cache pattern deleted", zap.String("pattern", pattern), zap.Int("count", n))
}

// InvalidateScopes removes every entry covered by the given scopes.
func (c *Cache) InvalidateScopes(ctx context.Context, scopes ...Scope) {
	t := Resolve(scopes...)
	c.Invalidate(ctx, t.Keys...)
	for _, p := range t.Patterns {
		c.InvalidatePattern(ctx, p)
	}
}
