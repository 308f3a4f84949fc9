// Package cache stores search results in Redis. Keys are derived from the
// canonical form of the parsed query, so spelling variants of the same
// query share an entry, and from the catalog version, so a reload makes
// older entries unreachable.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/redis"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushPrefix(ctx context.Context, prefix string) (int64, error)
}

// QueryCache is a read-through search result cache. A QueryCache with a nil
// store computes every request.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache over store with the given entry TTL. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Enabled reports whether results are actually cached.
func (c *QueryCache) Enabled() bool {
	return c.store != nil
}

// Get returns the cached result for req against catalog version.
func (c *QueryCache) Get(ctx context.Context, req executor.Request, version uint64) (*executor.SearchResult, bool) {
	if c.store == nil {
		return nil, false
	}
	key := Key(req, version)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "query", req.Query, "key", key)
	return &result, true
}

// Set stores result. Failures are logged, never returned.
func (c *QueryCache) Set(ctx context.Context, req executor.Request, version uint64, result *executor.SearchResult) {
	if c.store == nil {
		return
	}
	key := Key(req, version)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns a cached result or computes, stores, and returns a
// fresh one. Concurrent misses for the same key share one computation. The
// second result reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	req executor.Request,
	version uint64,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if c.store == nil {
		result, err := computeFn()
		return result, false, err
	}
	if result, ok := c.Get(ctx, req, version); ok {
		result.Query = req.Query
		return result, true, nil
	}
	key := Key(req, version)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, req, version, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	shared := *val.(*executor.SearchResult)
	shared.Query = req.Query
	return &shared, false, nil
}

// Invalidate drops every cached search result.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	if c.store == nil {
		return 0, nil
	}
	deleted, err := c.store.FlushPrefix(ctx, keyPrefix)
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns hit and miss counts since start.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Key is the cache key for req against catalog version.
func Key(req executor.Request, version uint64) string {
	hash := sha256.Sum256([]byte(Fingerprint(req, version)))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// Fingerprint is the unhashed key material: the canonical query plus every
// request option that changes the response.
func Fingerprint(req executor.Request, version uint64) string {
	parsed := query.Parse(req.Query)
	canonical := query.FormatQuery(parsed)
	if parsed.Empty() {
		canonical = ""
	}
	var sortPart string
	if req.SortConfig != nil {
		sortPart = "multi=" + req.SortConfig.String()
	} else {
		sortPart = fmt.Sprintf("sort=%s,%s", req.SortBy, req.Order)
	}
	parts := []string{
		"v=" + fmt.Sprint(version),
		"q=" + canonical,
		"rel=" + strings.ToLower(query.RelevanceText(strings.TrimSpace(req.Query), parsed)),
		sortPart,
		fmt.Sprintf("limit=%d", req.Limit),
		fmt.Sprintf("offset=%d", req.Offset),
		fmt.Sprintf("hl=%t", req.Highlight),
	}
	return strings.Join(parts, "|")
}
