// Command searcher serves the inventory search API.
//
// It loads the item catalog from a YAML/JSON file or PostgreSQL, refreshes
// it periodically and on Kafka change events, caches results in Redis, and
// publishes search analytics to Kafka (or aggregates them in-process when
// Kafka is disabled).
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory/source"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/preferences"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup("searcher", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"inventory_source", cfg.Inventory.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer("searcher", cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()

	var src source.Source
	switch cfg.Inventory.Source {
	case "postgres":
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		checker.Register("postgres", health.Ping(db.Ping))
		pg := source.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare items table", "error", err)
			os.Exit(1)
		}
		src = pg
	default:
		src = source.NewFile(cfg.Inventory.File)
	}

	catalog := source.NewCatalog(src, cfg.Inventory, m)
	if _, err := catalog.Reload(ctx); err != nil {
		slog.Error("initial catalog load failed", "source", src.Name(), "error", err)
		os.Exit(1)
	}
	go catalog.Run(ctx, cfg.Inventory.RefreshInterval)
	checker.Register("catalog", catalog.Check)
	if cfg.Inventory.RefreshInterval > 0 {
		checker.RegisterOptional("catalog_freshness", health.Freshness(func() time.Time {
			return catalog.Snapshot().LoadedAt
		}, 3*cfg.Inventory.RefreshInterval))
	}

	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		checker.RegisterOptional("redis", health.Ping(redisClient.Ping))
	}

	var queryCache *cache.QueryCache
	if redisClient != nil {
		queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
		catalog.OnReload(func(snap *source.Snapshot) {
			// Old keys are unreachable once the version moves; flushing frees them early.
			if n, err := queryCache.Invalidate(context.Background()); err != nil {
				slog.Warn("cache flush after reload failed", "error", err)
			} else {
				slog.Debug("cache flushed after reload", "version", snap.Version, "keys", n)
			}
		})
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var backend preferences.Backend
	switch {
	case cfg.Preferences.Backend == "redis" && redisClient != nil:
		backend = preferences.NewRedis(redisClient)
	case cfg.Preferences.Backend == "redis":
		slog.Warn("redis unavailable, preferences kept in memory")
		backend = preferences.NewMemory()
	default:
		backend = preferences.NewMemory()
	}
	prefs := preferences.NewStore(backend, cfg.Preferences.KeyPrefix)

	var tracker analytics.Tracker
	aggregator := analytics.NewAggregator()
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize, 0, 0)
		collector.Start(ctx)
		defer func() {
			collector.Close()
			producer.Close()
		}()
		tracker = collector
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

		changes := source.NewChangeConsumer(kafka.NewConsumer(
			cfg.Kafka,
			cfg.Kafka.Topics.InventoryChanges,
			source.HandleChanges(catalog),
			kafka.WithGroupSuffix(replicaSuffix()),
		))
		go func() {
			if err := changes.Start(ctx); err != nil {
				slog.Error("change consumer stopped", "error", err)
			}
		}()
	} else {
		tracker = aggregator
		slog.Info("kafka disabled, aggregating analytics in-process")
	}

	weights, err := ranker.ParseWeights(cfg.Search.Weights)
	if err != nil {
		slog.Error("invalid search weights", "error", err)
		os.Exit(1)
	}
	exec := executor.New(catalog, cfg.Search,
		executor.WithMetrics(m),
		executor.WithTracer(tracing.New(cfg.Tracing)),
		executor.WithScorer(ranker.NewScorer(cfg.Search.RecencyWindow, ranker.WithWeights(weights))),
	)
	h := handler.New(exec, catalog, handler.Deps{
		Cache:       queryCache,
		Preferences: prefs,
		Tracker:     tracker,
		Metrics:     m,
	})

	mux := http.NewServeMux()
	h.Register(mux)
	if !cfg.Kafka.Enabled {
		analyticsHandler := analytics.NewHandler(aggregator, nil)
		mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.Metrics(m),
		middleware.When(len(cfg.Server.CORSOrigins) > 0, middleware.CORS(cfg.Server.CORSOrigins)),
		middleware.When(cfg.Server.RateLimit > 0, middleware.RateLimit(middleware.NewLimiter(cfg.Server.RateLimit, time.Minute))),
		middleware.Timeout(cfg.Server.WriteTimeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// replicaSuffix gives every replica its own consumer group so each one sees
// every change event.
func replicaSuffix() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fmt.Sprintf("pid-%d", os.Getpid())
	}
	return host
}
