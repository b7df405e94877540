// Command loadtest drives the search service with a mix of Spanish search,
// typeahead and facet requests from a fixed-size worker pool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

var queries = []string{
	"guardia civil",
	"derecho constitucional",
	"derecho penal",
	"policía",
	"policia local",
	"instituciones penitenciarias",
	"procedimiento administrativo",
	"supuestos prácticos",
	"oposiciones correos",
	"seguridad social",
	"maría garcía",
	"sanidad",
	"gardia civil",
	"derecho penl",
	"idiomas diplomatico",
}

var prefixes = []string{"de", "gu", "pro", "mar", "ca", "po", "te", "sa"}

var durationBuckets = []string{"short", "medium", "long"}

type kind int

const (
	kindSearch kind = iota
	kindFiltered
	kindSuggest
	kindFacets
)

func (k kind) String() string {
	switch k {
	case kindSearch:
		return "search"
	case kindFiltered:
		return "filtered search"
	case kindSuggest:
		return "suggest"
	default:
		return "facets"
	}
}

// pick maps a uniform draw in [0,100) onto the request mix.
func pick(n int) kind {
	switch {
	case n < 55:
		return kindSearch
	case n < 70:
		return kindFiltered
	case n < 95:
		return kindSuggest
	default:
		return kindFacets
	}
}

func buildURL(base string, k kind, rng *rand.Rand) string {
	switch k {
	case kindSearch:
		return fmt.Sprintf("%s/api/v1/search?q=%s", base, url.QueryEscape(queries[rng.Intn(len(queries))]))
	case kindFiltered:
		return fmt.Sprintf("%s/api/v1/search?q=%s&duration=%s", base,
			url.QueryEscape(queries[rng.Intn(len(queries))]),
			durationBuckets[rng.Intn(len(durationBuckets))])
	case kindSuggest:
		return fmt.Sprintf("%s/api/v1/suggest?q=%s", base, url.QueryEscape(prefixes[rng.Intn(len(prefixes))]))
	default:
		return base + "/api/v1/facets"
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	seed := flag.Int64("seed", time.Now().UnixNano(), "request mix seed")
	flag.Parse()

	fmt.Println("=== Course Catalog Load Test ===")
	fmt.Printf("Target:      %s\n", *baseURL)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Duration:    %s\n", *duration)
	fmt.Println()

	stats, err := run(*baseURL, *concurrency, *duration, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load test failed: %v\n", err)
		os.Exit(1)
	}

	var total int64
	for _, k := range []kind{kindSearch, kindFiltered, kindSuggest, kindFacets} {
		stats[k].Report(os.Stdout, k.String(), *duration)
		total += stats[k].Total()
	}
	if total == 0 {
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func run(baseURL string, concurrency int, duration time.Duration, seed int64) (map[kind]*Stats, error) {
	stats := map[kind]*Stats{
		kindSearch:   NewStats(),
		kindFiltered: NewStats(),
		kindSuggest:  NewStats(),
		kindFacets:   NewStats(),
	}
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        concurrency * 2,
			MaxIdleConnsPerHost: concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	rng := rand.New(rand.NewSource(seed))
	var wg sync.WaitGroup
	for ctx.Err() == nil {
		k := pick(rng.Intn(100))
		target := buildURL(baseURL, k, rng)
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			latency, status, hit, err := do(ctx, client, target, k)
			if ctx.Err() != nil {
				return
			}
			stats[k].Record(latency, status, hit, err)
		})
		if err != nil {
			wg.Done()
			return nil, fmt.Errorf("submitting request: %w", err)
		}
	}
	wg.Wait()
	return stats, nil
}

func do(ctx context.Context, client *http.Client, target string, k kind) (time.Duration, int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, 0, false, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return time.Since(start), 0, false, err
	}
	defer resp.Body.Close()

	hit := false
	if k == kindSearch || k == kindFiltered {
		var body struct {
			CacheHit bool `json:"cache_hit"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			hit = body.CacheHit
		}
	}
	io.Copy(io.Discard, resp.Body)
	return time.Since(start), resp.StatusCode, hit, nil
}
