package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CacheRepository is a shared byte cache, implemented over Redis by the data
// layer.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil without error when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeletePrefix removes every key starting with prefix and returns the count.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	Health(ctx context.Context) error
}

// LookupCache caches reference documents in process and, when a shared
// CacheRepository is configured, in Redis as well. Concurrent misses for the
// same key run the loader once.
type LookupCache struct {
	remote CacheRepository
	local  *gocache.Cache
	group  singleflight.Group
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// LookupCacheOptions bundles dependencies for NewLookupCache.
type LookupCacheOptions struct {
	// Remote is optional.
	Remote    CacheRepository
	TTL       time.Duration
	KeyPrefix string
	Logger    *slog.Logger
}

// NewLookupCache creates a LookupCache.
func NewLookupCache(opts LookupCacheOptions) *LookupCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupCache{
		remote: opts.Remote,
		local:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		prefix: opts.KeyPrefix,
		logger: logger.With("component", "lookup_cache"),
	}
}

// Fetch returns the document cached under key, calling load on a miss. Load
// errors are returned and not cached. Shared cache failures are logged and
// treated as misses.
func (c *LookupCache) Fetch(
	ctx context.Context,
	key string,
	load func(ctx context.Context) (map[string]any, error),
) (map[string]any, error) {
	full := c.prefix + key
	if v, ok := c.local.Get(full); ok {
		return v.(map[string]any), nil
	}

	v, err, _ := c.group.Do(full, func() (any, error) {
		if doc, ok := c.fromRemote(ctx, full); ok {
			c.local.Set(full, doc, c.ttl)
			return doc, nil
		}

		doc, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			doc = map[string]any{}
		}
		c.local.Set(full, doc, c.ttl)
		c.toRemote(ctx, full, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func (c *LookupCache) fromRemote(ctx context.Context, key string) (map[string]any, bool) {
	if c.remote == nil {
		return nil, false
	}
	raw, err := c.remote.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "shared cache read failed", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		return nil, false
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, true
}

func (c *LookupCache) toRemote(ctx context.Context, key string, doc map[string]any) {
	if c.remote == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := c.remote.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "shared cache write failed", "key", key, "error", err)
	}
}

// Flush empties the in-process cache and removes this cache's shared keys.
func (c *LookupCache) Flush(ctx context.Context) (int, error) {
	n := c.local.ItemCount()
	c.local.Flush()
	if c.remote == nil {
		return n, nil
	}
	removed, err := c.remote.DeletePrefix(ctx, c.prefix)
	if err != nil {
		return n, err
	}
	return removed, nil
}
