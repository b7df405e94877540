package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/kafka"
)

const (
	topN          = 10
	maxLatencies  = 100000
	filterCatKey  = "category:"
	filterDurKey  = "duration:"
	filterLevlKey = "level:"
)

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	TotalSuggests     int64        `json:"total_suggests"`
	CourseViews       int64        `json:"course_views"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	FuzzySearches     int64        `json:"fuzzy_searches"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	TopFilters        []QueryCount `json:"top_filters"`
	TopCourses        []QueryCount `json:"top_courses"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds analytics events into running totals. It can be fed from
// a Kafka consumer or used directly as a Sink when no broker is configured.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     atomic.Int64
	totalSuggests     atomic.Int64
	courseViews       atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	zeroResults       atomic.Int64
	fuzzySearches     atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	filterCounts      map[string]int64
	courseCounts      map[string]int64
	startTime         time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. consumer may be nil for in-process
// use.
func NewAggregator(consumer *kafka.Consumer) *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 10000),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		filterCounts:      make(map[string]int64),
		courseCounts:      make(map[string]int64),
		startTime:         time.Now(),
		consumer:          consumer,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// SetConsumer attaches the Kafka consumer that Start reads from.
func (a *Aggregator) SetConsumer(consumer *kafka.Consumer) {
	a.consumer = consumer
}

// Start consumes events until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) error {
	if a.consumer == nil {
		return fmt.Errorf("starting aggregator: no consumer configured")
	}
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent adapts the aggregator to a Kafka message handler. Undecodable
// messages are logged and skipped so they are still committed.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		if err := agg.Ingest(value); err != nil {
			agg.logger.Error("failed to decode analytics event", "key", string(key), "error", err)
		}
		return nil
	}
}

// Publish records an event in process.
func (a *Aggregator) Publish(_ context.Context, event kafka.Event) error {
	data, err := json.Marshal(event.Value)
	if err != nil {
		return fmt.Errorf("marshaling event value: %w", err)
	}
	return a.Ingest(data)
}

// PublishBatch records a batch of events in process.
func (a *Aggregator) PublishBatch(ctx context.Context, events []kafka.Event) error {
	for _, event := range events {
		if err := a.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Ingest decodes and records one serialized event.
func (a *Aggregator) Ingest(data []byte) error {
	event, err := Decode(data)
	if err != nil {
		return err
	}
	a.Record(event)
	return nil
}

// Record folds a decoded event into the totals. Unknown values are ignored.
func (a *Aggregator) Record(event any) {
	switch e := event.(type) {
	case SearchEvent:
		a.recordSearch(e)
	case SuggestEvent:
		a.totalSuggests.Add(1)
	case CourseViewEvent:
		a.courseViews.Add(1)
		a.mu.Lock()
		a.courseCounts[e.CourseID]++
		a.mu.Unlock()
	}
}

func (a *Aggregator) recordSearch(event SearchEvent) {
	a.totalSearches.Add(1)
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.FuzzyApplied {
		a.fuzzySearches.Add(1)
	}
	if event.TotalHits == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.latencies) < maxLatencies {
		a.latencies = append(a.latencies, event.LatencyMs)
	}
	if event.Query != "" {
		a.queryCounts[event.Query]++
		if event.TotalHits == 0 {
			a.zeroResultQueries[event.Query]++
		}
	}
	for _, id := range event.Filters.Categories {
		a.filterCounts[filterCatKey+id]++
	}
	for _, id := range event.Filters.Durations {
		a.filterCounts[filterDurKey+id]++
	}
	for _, id := range event.Filters.Levels {
		a.filterCounts[filterLevlKey+id]++
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches.Load(),
		TotalSuggests:   a.totalSuggests.Load(),
		CourseViews:     a.courseViews.Load(),
		CacheHits:       a.cacheHits.Load(),
		CacheMisses:     a.cacheMisses.Load(),
		ZeroResultCount: a.zeroResults.Load(),
		FuzzySearches:   a.fuzzySearches.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = top(a.queryCounts, topN)
	stats.ZeroResultQueries = top(a.zeroResultQueries, topN)
	stats.TopFilters = top(a.filterCounts, topN)
	stats.TopCourses = top(a.courseCounts, topN)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// top returns the n largest counts, ties broken by key for stable output.
func top(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
