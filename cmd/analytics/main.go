// Command analytics starts the standalone search analytics service.
//
// It consumes search events published by the searcher replicas, aggregates
// them in memory (query volume, latency percentiles, cache hit rate,
// zero-result queries, field usage), snapshots the aggregate to PostgreSQL,
// and serves GET /api/v1/analytics and GET /api/v1/analytics/history.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-port 8081] [-metrics-port 9091]
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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	port := flag.Int("port", 8081, "HTTP port, overriding server.port")
	retention := flag.Duration("retention", 30*24*time.Hour, "how long stored snapshots are kept")
	metricsPort := flag.Int("metrics-port", 9091, "Prometheus port, 0 to disable")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger.Setup("analytics", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	checker := health.NewChecker()
	var snapshots analytics.SnapshotLister
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, analytics history disabled", "error", err)
	} else {
		defer db.Close()
		store := aggregator.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		if latest, err := store.LatestSnapshot(ctx); err != nil {
			slog.Warn("loading latest snapshot failed, starting from zero", "error", err)
		} else if latest != nil {
			agg.Restore(latest.Stats)
		}
		snapshots = store
		checker.RegisterOptional("postgres", health.Ping(db.Ping))
		if n, err := store.Prune(ctx, time.Now().Add(-*retention)); err != nil {
			slog.Warn("pruning old snapshots failed", "error", err)
		} else if n > 0 {
			slog.Info("pruned old snapshots", "deleted", n)
		}
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	if cfg.Metrics.Enabled && *metricsPort > 0 {
		reg := prometheus.NewRegistry()
		registerConsumerMetrics(reg, consumer)
		shutdownMetrics := metrics.StartServer("analytics", *metricsPort, reg)
		defer shutdownMetrics(context.Background())
	}

	analyticsHandler := analytics.NewHandler(agg, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/history", analyticsHandler.History)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux, middleware.RequestID, middleware.AccessLog)

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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}

func registerConsumerMetrics(reg prometheus.Registerer, consumer *kafka.Consumer) {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "analytics",
		Name:      "events_processed_total",
		Help:      "Search events folded into the aggregate.",
	}, func() float64 { return float64(consumer.Stats().Processed) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "analytics",
		Name:      "events_dropped_total",
		Help:      "Search events dropped after handler failures.",
	}, func() float64 { return float64(consumer.Stats().Dropped) })
}
