// Package searcher answers free-text queries, facet listings and typeahead
// requests over one indexed course catalog. Search results are memoized per
// (query, filters) for the lifetime of the index.
package searcher

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/tracing"
)

type Searcher struct {
	engine         *indexer.Engine
	executor       *executor.Executor
	cache          *cache.QueryCache
	suggester      *suggest.Suggester
	metrics        *metrics.Metrics
	fuzzyThreshold int
	suggestLimit   int
	lastEvictions  atomic.Int64
	logger         *slog.Logger
}

type Option func(*Searcher)

// WithCache replaces the default unbounded in-process cache.
func WithCache(c *cache.QueryCache) Option {
	return func(s *Searcher) { s.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) { s.metrics = m }
}

func WithFuzzyThreshold(n int) Option {
	return func(s *Searcher) { s.fuzzyThreshold = n }
}

func WithSuggestLimit(n int) Option {
	return func(s *Searcher) { s.suggestLimit = n }
}

func New(engine *indexer.Engine, opts ...Option) *Searcher {
	s := &Searcher{
		engine:         engine,
		fuzzyThreshold: executor.DefaultFuzzyThreshold,
		suggestLimit:   suggest.DefaultLimit,
		logger:         slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(config.CacheConfig{}, nil)
	}
	s.executor = executor.New(engine, s.fuzzyThreshold)
	s.suggester = suggest.New(engine)
	if s.metrics != nil {
		stats := engine.Stats()
		s.metrics.CatalogDocuments.Set(float64(stats.Documents))
		s.metrics.IndexTerms.Set(float64(stats.Terms))
	}
	return s
}

// Search returns the courses matching query and filters, ordered by title,
// or the whole corpus in load order when neither is set. The returned slice
// is owned by the caller.
func (s *Searcher) Search(ctx context.Context, query string, filters catalog.Filters) ([]catalog.Course, error) {
	result, _, err := s.Do(ctx, query, filters)
	if err != nil {
		return nil, err
	}
	return slices.Clone(result.Results), nil
}

// Do is Search with the full result envelope and whether it was served from
// the cache. The result is shared with the cache and must not be modified.
func (s *Searcher) Do(ctx context.Context, query string, filters catalog.Filters) (*executor.SearchResult, bool, error) {
	start := time.Now()
	ctx, span := tracing.StartChildSpan(ctx, "searcher.search")
	defer span.End()

	result, hit, err := s.cache.GetOrCompute(ctx, query, filters, func() (*executor.SearchResult, error) {
		return s.executor.Execute(ctx, parser.Parse(query), filters)
	})
	span.SetAttr("cache_hit", hit)
	if err != nil {
		s.observeError()
		return nil, false, err
	}
	span.SetAttr("results", result.TotalHits)
	s.observeSearch(result, hit, time.Since(start))
	return result, hit, nil
}

// Suggest returns typeahead suggestions for query. A non-positive limit uses
// the configured default.
func (s *Searcher) Suggest(query string, limit int) []catalog.Suggestion {
	if limit <= 0 {
		limit = s.suggestLimit
	}
	out := s.suggester.Suggest(query, limit)
	if s.metrics != nil {
		s.metrics.SuggestRequestsTotal.Inc()
		s.metrics.SuggestionsReturned.Observe(float64(len(out)))
	}
	return out
}

func (s *Searcher) Categories() []catalog.FacetOption {
	return s.engine.Categories()
}

func (s *Searcher) Durations() []catalog.FacetOption {
	return s.engine.Durations()
}

func (s *Searcher) Levels() []catalog.FacetOption {
	return s.engine.Levels()
}

// ClearFilters returns a filter set with no active dimension.
func (s *Searcher) ClearFilters() catalog.Filters {
	return catalog.Filters{}
}

// Course looks a course up by id.
func (s *Searcher) Course(id string) (catalog.Course, bool) {
	return s.engine.Lookup(id)
}

func (s *Searcher) Engine() *indexer.Engine {
	return s.engine
}

func (s *Searcher) Cache() *cache.QueryCache {
	return s.cache
}

func (s *Searcher) observeSearch(result *executor.SearchResult, hit bool, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
		if result.FuzzyApplied {
			s.metrics.FuzzyPassesTotal.Inc()
		}
	}
	resultType := cacheStatus
	if result.TotalHits == 0 {
		resultType = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(result.TotalHits))

	evictions := s.cache.Stats().Evictions
	if delta := evictions - s.lastEvictions.Swap(evictions); delta > 0 {
		s.metrics.CacheEvictionsTotal.Add(float64(delta))
	}
}

func (s *Searcher) observeError() {
	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
	}
}
