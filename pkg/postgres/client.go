// Package postgres opens a pooled lib/pq connection, bootstraps the tables
// the services own, and offers a transaction helper.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/resilience"
)

// Client wraps the pool. DB is exported for stores issuing their own queries.
type Client struct {
	DB     *sql.DB
	cfg    config.PostgresConfig
	logger *slog.Logger
}

// New opens the pool and pings it, retrying while the server comes up.
func New(cfg config.PostgresConfig) (*Client, error) {
	return Open(context.Background(), cfg)
}

// Open is New bound to ctx.
func Open(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	policy := resilience.Policy{
		Attempts:       cfg.ConnectAttempts,
		AttemptTimeout: cfg.ConnectTimeout,
	}
	if err := policy.Do(ctx, "postgres-connect", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}
	c := &Client{
		DB:     db,
		cfg:    cfg,
		logger: slog.Default().With("component", "postgres", "database", cfg.Database),
	}
	c.logger.Info("connected to postgres", "host", cfg.Host, "port", cfg.Port)
	return c, nil
}

// Ping checks the connection; used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// InTx runs fn in a transaction, committing when it returns nil.
func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// EnsureSchema applies idempotent DDL for the named table set. A transaction
// scoped advisory lock keyed on name keeps replicas starting together from
// racing on CREATE.
func (c *Client) EnsureSchema(ctx context.Context, name string, statements ...string) error {
	err := c.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(name)); err != nil {
			return fmt.Errorf("acquiring schema lock: %w", err)
		}
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensuring %s schema: %w", name, err)
	}
	c.logger.Debug("schema ensured", "schema", name, "statements", len(statements))
	return nil
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}
