// Command analytics aggregates catalog search events from Kafka and
// periodically persists snapshots to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-retention 720h]
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

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	retention := flag.Duration("retention", 30*24*time.Hour, "how long snapshots are kept")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator(nil)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg))
	agg.SetConsumer(consumer)
	go func() {
		if err := agg.Start(ctx); err != nil {
			slog.Error("aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	checker := health.NewChecker(5 * time.Second)
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		st := consumer.Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("lag %d, processed %d, failed %d", st.Lag, st.Processed, st.Failed),
		}
	})

	var snapshots analytics.SnapshotLister
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
		checker.RegisterOptional("postgres", health.PingCheck(nil))
	} else {
		defer db.Close()
		store := aggregator.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create snapshot schema", "error", err)
			os.Exit(1)
		}
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		go pruneDaily(ctx, store, *retention)
		snapshots = store
		checker.RegisterOptional("postgres", health.PingCheck(db))
	}

	analyticsHandler := analytics.NewHandler(agg, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	m := metrics.New()
	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "analytics", nil)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

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

func pruneDaily(ctx context.Context, store *aggregator.Store, retention time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := store.Prune(ctx, retention)
			if err != nil {
				slog.Error("snapshot prune failed", "error", err)
				continue
			}
			slog.Info("old snapshots pruned", "deleted", n)
		case <-ctx.Done():
			return
		}
	}
}
