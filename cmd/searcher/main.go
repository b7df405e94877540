// Command searcher serves catalog search, facets and typeahead over HTTP
// from an in-memory index built at startup.
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
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/analytics/collector"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/tracing"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "catalog_source", cfg.Catalog.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	courses, err := store.Load(ctx, cfg)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	engine, err := indexer.New(courses)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}
	stats := engine.Stats()
	slog.Info("index built", "courses", stats.Documents, "terms", stats.Terms)

	m := metrics.New()

	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, shared cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			slog.Info("shared cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Cache.TTL)
		}
	}
	queryCache := cache.New(cfg.Cache, redisClient, cache.WithMetrics(m))

	svc := searcher.New(engine,
		searcher.WithCache(queryCache),
		searcher.WithMetrics(m),
		searcher.WithFuzzyThreshold(cfg.Search.FuzzyThreshold),
		searcher.WithSuggestLimit(cfg.Search.SuggestLimit),
	)

	var handlerOpts []handler.Option
	if cfg.Tracing.Enabled {
		handlerOpts = append(handlerOpts, handler.WithSampler(tracing.NewSampler(cfg.Tracing.SampleRate)))
	}

	aggregator := analytics.NewAggregator(nil)
	if cfg.Analytics.Enabled {
		var (
			sink      analytics.Sink
			batchSink collector.BatchSink
		)
		if cfg.Kafka.Enabled {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
			defer producer.Close()
			sink, batchSink = producer, producer
			aggregator.SetConsumer(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator)))
			go func() {
				if err := aggregator.Start(ctx); err != nil {
					slog.Error("analytics aggregator error", "error", err)
				}
			}()
			slog.Info("analytics publishing to kafka", "topic", cfg.Kafka.Topics.AnalyticsEvents)
		} else {
			sink, batchSink = aggregator, aggregator
			slog.Info("analytics aggregated in process")
		}

		searchEvents := analytics.NewCollector(sink, cfg.Analytics.BufferSize)
		searchEvents.Start(ctx)
		defer searchEvents.Close()

		suggestEvents := collector.NewBatchCollector(batchSink, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
		suggestEvents.Start(ctx)
		defer suggestEvents.Close()

		handlerOpts = append(handlerOpts,
			handler.WithSearchTracker(searchEvents),
			handler.WithSuggestTracker(suggestEvents),
		)
	}

	if cfg.Kafka.Enabled {
		// Each replica joins its own group so every one sees every event.
		group := fmt.Sprintf("%s-cache-%s", cfg.Kafka.ConsumerGroup, uuid.NewString())
		invalidations := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CacheInvalidate, cache.InvalidationHandler(queryCache),
			kafka.WithGroupID(group),
			kafka.WithStartOffset(kafka.LastOffset),
		)
		go func() {
			if err := invalidations.Start(ctx); err != nil {
				slog.Error("cache invalidation consumer error", "error", err)
			}
		}()
	}

	checker := health.NewChecker(5 * time.Second)
	checker.Register("index", health.CountCheck("courses", engine.Len))
	checker.RegisterOptional("redis", health.PingCheck(redisClient))

	mux := http.NewServeMux()
	handler.New(svc, cfg.Search, handlerOpts...).Register(mux)
	analyticsH := analytics.NewHandler(aggregator, nil)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsH.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = gzhttp.GzipHandler(mux)
	chain = middleware.Timeout(cfg.Search.RequestTimeout)(chain)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Cleanup(ctx, time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins))(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, "searcher", nil)
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
