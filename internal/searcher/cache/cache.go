// Package cache memoizes search results. Results live in an in-process LRU
// and, when Redis is configured, in a shared second level keyed the same
// way. Concurrent misses on one key are computed once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

type QueryCache struct {
	local   *LRU
	remote  *pkgredis.Client
	breaker *resilience.CircuitBreaker
	cfg     config.CacheConfig
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Entries   int   `json:"entries"`
	Evictions int64 `json:"evictions"`
	Capacity  int   `json:"capacity"`
	Remote    bool  `json:"remote"`

	Breaker *resilience.BreakerStats `json:"breaker,omitempty"`
}

type Option func(*options)

type options struct {
	metrics *metrics.Metrics
}

// WithMetrics exports the Redis circuit breaker state.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a cache. remote may be nil, in which case only the local LRU
// is used.
func New(cfg config.CacheConfig, remote *pkgredis.Client, opts ...Option) *QueryCache {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &QueryCache{
		local:  NewLRU(cfg.Capacity),
		remote: remote,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
	if remote != nil {
		cbCfg := resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.RemoteFailureThreshold,
			ResetTimeout:     cfg.RemoteResetTimeout,
			IsFailure: func(err error) bool {
				return err != nil && !pkgredis.IsNilError(err)
			},
		}
		if o.metrics != nil {
			gauge := o.metrics.CircuitBreakerState
			cbCfg.OnStateChange = func(name string, _, to resilience.State) {
				gauge.WithLabelValues(name).Set(float64(to))
			}
		}
		c.breaker = resilience.NewCircuitBreaker("redis-cache", cbCfg)
	}
	return c
}

func (c *QueryCache) Get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	if result, ok := c.local.Get(key); ok {
		c.hits.Add(1)
		return result, true
	}
	if result, ok := c.getRemote(ctx, key); ok {
		c.local.Set(key, result)
		c.hits.Add(1)
		return result, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *QueryCache) Set(ctx context.Context, key string, result *executor.SearchResult) {
	c.local.Set(key, result)
	c.setRemote(ctx, key, result)
}

// GetOrCompute returns the cached result for (query, filters) or computes,
// stores and returns it. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	filters catalog.Filters,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	key := BuildKey(query, filters)
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.local.Get(key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate drops every local entry and every remote key under the cache
// prefix.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	purged := c.local.Purge()
	var deleted int64
	if c.remote != nil {
		var err error
		deleted, err = c.remote.FlushByPattern(ctx, keyPrefix+"*")
		if err != nil {
			return fmt.Errorf("invalidating cache: %w", err)
		}
	}
	c.logger.Info("cache invalidate", "local_entries", purged, "remote_keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() Stats {
	stats := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Entries:   c.local.Len(),
		Evictions: c.local.Evictions(),
		Capacity:  c.cfg.Capacity,
		Remote:    c.remote != nil,
	}
	if c.breaker != nil {
		b := c.breaker.Stats()
		stats.Breaker = &b
	}
	return stats
}

func (c *QueryCache) getRemote(ctx context.Context, key string) (*executor.SearchResult, bool) {
	if c.remote == nil {
		return nil, false
	}
	data, err := resilience.Guard(c.breaker, func() (string, error) {
		return resilience.Call(ctx, c.cfg.RemoteTimeout, "redis get", func(ctx context.Context) (string, error) {
			return c.remote.Get(ctx, key)
		})
	})
	if pkgredis.IsNilError(err) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("remote cache get failed", "key", key, "error", err)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (c *QueryCache) setRemote(ctx context.Context, key string, result *executor.SearchResult) {
	if c.remote == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	_, err = resilience.Guard(c.breaker, func() (struct{}, error) {
		return resilience.Call(ctx, c.cfg.RemoteTimeout, "redis set", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.remote.Set(ctx, key, data, c.cfg.TTL)
		})
	})
	if err != nil {
		c.logger.Warn("remote cache set failed", "key", key, "error", err)
	}
}

// keyFields is hashed into the cache key. JSON encoding keeps every query
// and id distinct however they are spelled.
type keyFields struct {
	Query      string   `json:"q"`
	Categories []string `json:"c"`
	Durations  []string `json:"d"`
	Levels     []string `json:"l"`
}

// BuildKey derives the cache key of a query and filter set. The raw query
// is used verbatim; filter ids are order independent.
func BuildKey(query string, filters catalog.Filters) string {
	n := filters.Normalized()
	// Strings and string slices always marshal.
	raw, _ := json.Marshal(keyFields{
		Query:      query,
		Categories: n.Categories,
		Durations:  n.Durations,
		Levels:     n.Levels,
	})
	hash := sha256.Sum256(raw)
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
