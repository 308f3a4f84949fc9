// Package redis wraps go-redis/v9 for the byte-blob workloads the platform
// has: cached search results with a TTL, preference documents without one,
// and prefix flushes when the catalog changes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/resilience"
)

// Keys are deleted in batches of this size during a flush.
const flushBatch = 256

// Client wraps a go-redis client.
type Client struct {
	rdb    redis.UniversalClient
	logger *slog.Logger
}

// NewClient connects and verifies the connection, retrying a short while so
// the searcher can start alongside Redis.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	policy := resilience.Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond, AttemptTimeout: 2 * time.Second}
	err := policy.Do(context.Background(), "redis-connect", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return newClient(rdb), nil
}

func newClient(rdb redis.UniversalClient) *Client {
	return &Client{rdb: rdb, logger: slog.Default().With("component", "redis")}
}

// Get returns the value stored at key. A missing key yields an error for
// which IsNilError is true.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, key).Bytes()
}

// Set stores value. A zero TTL keeps the key until it is deleted.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del deletes keys and reports how many existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Del(ctx, keys...).Result()
}

// ScanKeys returns every key starting with prefix. Glob metacharacters in
// prefix match literally.
func (c *Client) ScanKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pattern := EscapeGlob(prefix) + "*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", pattern, err)
	}
	return keys, nil
}

// FlushPrefix removes every key starting with prefix and returns how many
// were removed. Deletes go out as pipelined UNLINK batches.
func (c *Client) FlushPrefix(ctx context.Context, prefix string) (int64, error) {
	keys, err := c.ScanKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	var removed int64
	for start := 0; start < len(keys); start += flushBatch {
		end := min(start+flushBatch, len(keys))
		cmds, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
			for _, key := range keys[start:end] {
				p.Unlink(ctx, key)
			}
			return nil
		})
		for _, cmd := range cmds {
			if n, cmdErr := cmd.(*redis.IntCmd).Result(); cmdErr == nil {
				removed += n
			}
		}
		if err != nil {
			return removed, fmt.Errorf("unlinking keys under %s: %w", prefix, err)
		}
	}
	c.logger.Debug("flushed prefix", "prefix", prefix, "removed", removed)
	return removed, nil
}

// EscapeGlob quotes the characters SCAN MATCH treats specially.
func EscapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsNilError reports whether err means the key does not exist.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Ping checks the connection; used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
