package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
)

func BenchmarkQueryParse(b *testing.B) {
	queries := []struct {
		name  string
		query string
	}{
		{"single", "guardia"},
		{"accented", "Policía Nacional"},
		{"long", "preparación oposiciones policía nacional temario completo psicotécnicos"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = parser.Parse(q.query)
			}
		})
	}
}

// BenchmarkTitleSort measures collated title ordering at several result
// sizes.
func BenchmarkTitleSort(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		courses := corpus(n)
		b.Run(fmt.Sprintf("results_%d", n), func(b *testing.B) {
			buf := make([]catalog.Course, n)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				copy(buf, courses)
				ranker.SortByTitle(buf)
			}
		})
	}
}

// BenchmarkExecute measures uncached query execution, including the fuzzy
// fallback for misspelled queries.
func BenchmarkExecute(b *testing.B) {
	engine, err := indexer.New(corpus(5000))
	if err != nil {
		b.Fatal(err)
	}
	exec := executor.New(engine, 10)
	cases := []struct {
		name    string
		query   string
		filters catalog.Filters
	}{
		{"exact", "guardia civil", catalog.Filters{}},
		{"fuzzy", "gardia", catalog.Filters{}},
		{"filtered", "derecho", catalog.Filters{Durations: []string{"long"}}},
		{"empty", "", catalog.Filters{Levels: []string{"beginner"}}},
	}
	for _, tc := range cases {
		plan := parser.Parse(tc.query)
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := exec.Execute(context.Background(), plan, tc.filters); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSearcherCached measures the memoized path with a warm cache.
func BenchmarkSearcherCached(b *testing.B) {
	engine, err := indexer.New(corpus(5000))
	if err != nil {
		b.Fatal(err)
	}
	s := searcher.New(engine, searcher.WithCache(cache.New(config.CacheConfig{}, nil)))
	queries := []string{"derecho", "policia", "guardia civil", "idiomas"}
	for _, q := range queries {
		if _, err := s.Search(context.Background(), q, catalog.Filters{}); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := s.Search(context.Background(), queries[i%len(queries)], catalog.Filters{}); err != nil {
				b.Fatal(err)
			}
			i++
		}
	})
}

func BenchmarkSuggest(b *testing.B) {
	engine, err := indexer.New(corpus(5000))
	if err != nil {
		b.Fatal(err)
	}
	s := searcher.New(engine)
	prefixes := []string{"de", "pro", "mar", "gua"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Suggest(prefixes[i%len(prefixes)], 5)
	}
}
