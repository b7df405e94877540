package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(query string, ids ...string) *executor.SearchResult {
	res := &executor.SearchResult{Query: query, TotalHits: len(ids)}
	for _, id := range ids {
		res.Results = append(res.Results, catalog.Course{ID: id})
	}
	return res
}

func TestBuildKey(t *testing.T) {
	a := BuildKey("excel", catalog.Filters{Levels: []string{"beginner", "advanced"}})
	b := BuildKey("excel", catalog.Filters{Levels: []string{"advanced", "beginner", "beginner"}})
	assert.Equal(t, a, b, "filter order and duplicates do not change the key")
	assert.Contains(t, a, keyPrefix)

	assert.NotEqual(t, BuildKey("excel", catalog.Filters{}), BuildKey("Excel", catalog.Filters{}),
		"raw query is part of the key")
	assert.NotEqual(t,
		BuildKey("excel", catalog.Filters{Levels: []string{"beginner"}}),
		BuildKey("excel", catalog.Filters{Durations: []string{"beginner"}}))
}

func TestBuildKeySeparatorsInIDs(t *testing.T) {
	tests := []struct {
		name string
		a, b catalog.Filters
		qa   string
		qb   string
	}{
		{
			name: "comma inside one id",
			a:    catalog.Filters{Categories: []string{"a", "b"}},
			b:    catalog.Filters{Categories: []string{"a,b"}},
		},
		{
			name: "dimension marker inside an id",
			a:    catalog.Filters{Categories: []string{"x|d=long"}},
			b:    catalog.Filters{Categories: []string{"x"}, Durations: []string{"long"}},
		},
		{
			name: "dimension marker inside the query",
			qa:   "ana|c=justicia",
			b:    catalog.Filters{Categories: []string{"justicia"}},
			qb:   "ana",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, BuildKey(tt.qa, tt.a), BuildKey(tt.qb, tt.b))
		})
	}
}

func TestLRUEviction(t *testing.T) {
	lru := NewLRU(2)
	lru.Set("a", result("a"))
	lru.Set("b", result("b"))
	_, ok := lru.Get("a")
	require.True(t, ok)

	lru.Set("c", result("c"))

	_, ok = lru.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = lru.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, lru.Len())
	assert.Equal(t, int64(1), lru.Evictions())
}

func TestLRUUnbounded(t *testing.T) {
	lru := NewLRU(0)
	for i := 0; i < 500; i++ {
		lru.Set(fmt.Sprintf("k%d", i), result("q"))
	}
	assert.Equal(t, 500, lru.Len())
	assert.Zero(t, lru.Evictions())
	assert.Equal(t, 500, lru.Purge())
	assert.Zero(t, lru.Len())
}

func TestGetOrComputeMemoizes(t *testing.T) {
	c := New(config.CacheConfig{}, nil)
	ctx := context.Background()
	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return result("ana", "d3", "d1"), nil
	}

	first, hit, err := c.GetOrCompute(ctx, "ana", catalog.Filters{}, compute)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.GetOrCompute(ctx, "ana", catalog.Filters{}, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.False(t, stats.Remote)
	assert.Nil(t, stats.Breaker)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New(config.CacheConfig{}, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(ctx, "q", catalog.Filters{}, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Stats().Entries)

	res, hit, err := c.GetOrCompute(ctx, "q", catalog.Filters{}, func() (*executor.SearchResult, error) {
		return result("q"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "q", res.Query)
}

func TestGetOrComputeConcurrent(t *testing.T) {
	c := New(config.CacheConfig{Capacity: 16}, nil)
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _, err := c.GetOrCompute(ctx, "excel", catalog.Filters{}, func() (*executor.SearchResult, error) {
				calls.Add(1)
				<-release
				return result("excel", "d3"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 1, res.TotalHits)
		}()
	}
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(20))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestInvalidate(t *testing.T) {
	c := New(config.CacheConfig{}, nil)
	ctx := context.Background()
	_, _, err := c.GetOrCompute(ctx, "q", catalog.Filters{}, func() (*executor.SearchResult, error) {
		return result("q"), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.Stats().Entries)

	require.NoError(t, c.Invalidate(ctx))
	assert.Zero(t, c.Stats().Entries)

	_, hit, err := c.GetOrCompute(ctx, "q", catalog.Filters{}, func() (*executor.SearchResult, error) {
		return result("q"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidationHandlerPurgesLocal(t *testing.T) {
	c := New(config.CacheConfig{}, nil)
	c.Set(context.Background(), "search:a", &executor.SearchResult{})
	require.Equal(t, 1, c.Stats().Entries)

	handle := InvalidationHandler(c)
	err := handle(context.Background(), nil, []byte(`{"reason":"catalog seeded","source":"catalogctl"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Stats().Entries)

	assert.Error(t, handle(context.Background(), nil, []byte(`not json`)))
}
