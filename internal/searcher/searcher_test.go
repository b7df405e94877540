package searcher

import (
	"context"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenario = []catalog.Course{
	{ID: "d1", Title: "Programación Avanzada", Category: "Informática", Instructor: "Ana López", Duration: "5:00"},
	{ID: "d2", Title: "Introducción a Bases de Datos", Category: "Informática", Instructor: "Juan Pérez", Duration: "2:30"},
	{ID: "d3", Title: "Curso Básico de Excel", Category: "Ofimática", Instructor: "Ana López", Duration: "1:15"},
}

func newSearcher(t *testing.T, courses []catalog.Course, opts ...Option) *Searcher {
	t.Helper()
	engine, err := indexer.New(courses)
	require.NoError(t, err)
	return New(engine, opts...)
}

func ids(courses []catalog.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func sumCounts(opts []catalog.FacetOption) int {
	total := 0
	for _, o := range opts {
		total += o.Count
	}
	return total
}

func TestSearchEmptyReturnsCorpusInOrder(t *testing.T) {
	courses := catalog.SampleCourses()
	s := newSearcher(t, courses)

	got, err := s.Search(context.Background(), "", catalog.Filters{})
	require.NoError(t, err)
	assert.Equal(t, ids(courses), ids(got))
}

func TestSearchScenario(t *testing.T) {
	s := newSearcher(t, scenario)
	ctx := context.Background()

	got, err := s.Search(ctx, "programacion", catalog.Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids(got))

	got, err = s.Search(ctx, "", catalog.Filters{Levels: []string{"beginner"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d3", "d2"}, ids(got))
}

func TestFacetCountsSumToCorpus(t *testing.T) {
	courses := catalog.SampleCourses()
	s := newSearcher(t, courses)

	assert.Equal(t, len(courses), sumCounts(s.Durations()))
	assert.Equal(t, len(courses), sumCounts(s.Levels()))
	assert.Equal(t, len(courses), sumCounts(s.Categories()))
}

func TestFilteringIsIdempotent(t *testing.T) {
	courses := catalog.SampleCourses()
	s := newSearcher(t, courses)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		filters catalog.Filters
	}{
		{"level", "", catalog.Filters{Levels: []string{"intermediate"}}},
		{"duration and category", "", catalog.Filters{
			Durations:  []string{"long", "medium"},
			Categories: []string{"polic_a_nacional"},
		}},
		{"query and duration", "test", catalog.Filters{Durations: []string{"short"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := s.Search(ctx, tt.query, tt.filters)
			require.NoError(t, err)

			again := newSearcher(t, first)
			second, err := again.Search(ctx, tt.query, tt.filters)
			require.NoError(t, err)
			assert.ElementsMatch(t, ids(first), ids(second))
		})
	}
}

func TestSearchServedFromCache(t *testing.T) {
	s := newSearcher(t, scenario)
	ctx := context.Background()

	first, hit, err := s.Do(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := s.Do(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, ids(first.Results), ids(second.Results))
}

func TestCachedFilterDoesNotLeakToCommaJoinedID(t *testing.T) {
	s := newSearcher(t, scenario)
	ctx := context.Background()

	both, err := s.Search(ctx, "", catalog.Filters{Categories: []string{"inform_tica", "ofim_tica"}})
	require.NoError(t, err)
	require.Len(t, both, 3)

	joined := catalog.Filters{Categories: []string{"inform_tica,ofim_tica"}}
	cached, err := s.Search(ctx, "", joined)
	require.NoError(t, err)
	fresh, err := newSearcher(t, scenario).Search(ctx, "", joined)
	require.NoError(t, err)

	assert.Empty(t, fresh)
	assert.Equal(t, ids(fresh), ids(cached))
}

func TestSearchReturnsCallerOwnedSlice(t *testing.T) {
	s := newSearcher(t, scenario)
	ctx := context.Background()

	got, err := s.Search(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	got[0].Title = "mutated"

	again, err := s.Search(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].Title)
}

func TestBoundedCache(t *testing.T) {
	qc := cache.New(config.CacheConfig{Capacity: 1}, nil)
	s := newSearcher(t, scenario, WithCache(qc))
	ctx := context.Background()

	_, _, err := s.Do(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	_, _, err = s.Do(ctx, "excel", catalog.Filters{})
	require.NoError(t, err)

	_, hit, err := s.Do(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	assert.False(t, hit, "evicted entry is recomputed")
	assert.Equal(t, 1, qc.Stats().Entries)
}

func TestSearchMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	s := newSearcher(t, scenario, WithMetrics(m))
	ctx := context.Background()

	_, _, err := s.Do(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	_, _, err = s.Do(ctx, "ana", catalog.Filters{})
	require.NoError(t, err)
	_, _, err = s.Do(ctx, "zzzzzzzz", catalog.Filters{})
	require.NoError(t, err)
	s.Suggest("ana", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("zero_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuggestRequestsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CatalogDocuments))
}

func TestSearchCancelled(t *testing.T) {
	s := newSearcher(t, scenario)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "ana", catalog.Filters{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuggestUsesConfiguredLimit(t *testing.T) {
	s := newSearcher(t, catalog.SampleCourses(), WithSuggestLimit(2))
	sugs := s.Suggest("derecho", 0)

	titles := 0
	for _, sug := range sugs {
		if sug.Kind == catalog.KindTitle {
			titles++
		}
	}
	assert.Equal(t, 2, titles)
}

func TestClearFilters(t *testing.T) {
	s := newSearcher(t, scenario)
	assert.False(t, s.ClearFilters().Active())
}

func TestConcurrentSearch(t *testing.T) {
	s := newSearcher(t, catalog.SampleCourses())
	queries := []string{"derecho", "policia", "tst", "", "guardia civil", "derecho"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, q := range queries {
				_, err := s.Search(context.Background(), q, catalog.Filters{})
				assert.NoError(t, err)
				s.Suggest(q, 5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, s.Cache().Stats().Entries)
}
