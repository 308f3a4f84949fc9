package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/resilience"
)

// Snapshot is an immutable item collection. Searches hold on to the
// snapshot they started with even if a reload replaces it.
type Snapshot struct {
	Items    []*inventory.Item
	Version  uint64
	LoadedAt time.Time
	Source   string
}

// Catalog owns the current snapshot and refreshes it from a Source.
type Catalog struct {
	src     Source
	cfg     config.InventoryConfig
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	group   singleflight.Group
	breaker *resilience.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu        sync.Mutex
	listeners []func(*Snapshot)
}

// NewCatalog creates a Catalog with an empty snapshot. m may be nil.
func NewCatalog(src Source, cfg config.InventoryConfig, m *metrics.Metrics) *Catalog {
	c := &Catalog{
		src:     src,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "catalog", "source", src.Name()),
	}
	c.breaker = resilience.NewBreaker("catalog-source", resilience.BreakerConfig{
		Threshold: 3,
		Cooldown:  30 * time.Second,
		OnStateChange: func(name string, _, to resilience.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	c.current.Store(&Snapshot{Items: []*inventory.Item{}, Source: src.Name()})
	return c
}

// Snapshot returns the current snapshot. It never returns nil.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Items is shorthand for Snapshot().Items.
func (c *Catalog) Items() []*inventory.Item {
	return c.current.Load().Items
}

// Version is the number of successful reloads so far.
func (c *Catalog) Version() uint64 {
	return c.current.Load().Version
}

// OnReload registers fn to run after every successful reload.
func (c *Catalog) OnReload(fn func(*Snapshot)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Reload fetches a fresh snapshot. Concurrent callers share one load. Loads
// are retried with backoff, bounded by the configured timeout, and guarded
// by a circuit breaker; on failure the previous snapshot stays in place.
func (c *Catalog) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := c.group.Do("reload", func() (any, error) {
		return c.reload(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("reload shared with concurrent caller")
	}
	return v.(*Snapshot), nil
}

func (c *Catalog) reload(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	var items []*inventory.Item
	policy := resilience.Policy{
		Attempts:       c.cfg.RetryAttempts,
		BaseDelay:      c.cfg.RetryBaseDelay,
		AttemptTimeout: c.cfg.LoadTimeout,
	}
	err := c.breaker.Do(func() error {
		return policy.Do(ctx, "catalog-load", func(ctx context.Context) error {
			loaded, err := c.src.Load(ctx)
			if err != nil {
				return err
			}
			items = loaded
			return nil
		})
	})
	if err != nil {
		c.observe("failure")
		c.logger.Error("catalog reload failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, apperrors.Newf(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable, "loading %s: %v", c.src.Name(), err)
	}

	items = Sanitize(items, c.logger)
	snap := &Snapshot{
		Items:    items,
		Version:  c.version.Add(1),
		LoadedAt: time.Now().UTC(),
		Source:   c.src.Name(),
	}
	c.current.Store(snap)
	c.observe("success")
	if c.metrics != nil {
		c.metrics.CatalogItems.Set(float64(len(items)))
	}
	c.logger.Info("catalog reloaded",
		"items", len(items),
		"version", snap.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	c.mu.Lock()
	listeners := append([]func(*Snapshot){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

func (c *Catalog) observe(status string) {
	if c.metrics != nil {
		c.metrics.CatalogReloadsTotal.WithLabelValues(status).Inc()
	}
}

// Run reloads every interval until ctx is cancelled. Failures are logged and
// the next tick tries again.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Reload(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn("periodic reload failed", "error", err)
			}
		}
	}
}

// Check reports the catalog as down until the first successful load.
func (c *Catalog) Check(ctx context.Context) health.ComponentHealth {
	snap := c.Snapshot()
	if snap.Version == 0 {
		return health.ComponentHealth{Status: health.StatusDown, Message: "catalog not loaded"}
	}
	if c.breaker.State() != resilience.StateClosed {
		return health.ComponentHealth{
			Status:  health.StatusDegraded,
			Message: fmt.Sprintf("serving version %d, source circuit %s", snap.Version, c.breaker.State()),
		}
	}
	return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d items, version %d", len(snap.Items), snap.Version)}
}
