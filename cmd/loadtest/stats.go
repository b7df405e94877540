package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats accumulates outcomes for one request kind.
type Stats struct {
	total     atomic.Int64
	success   atomic.Int64
	errors    atomic.Int64
	cacheHits atomic.Int64

	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

// Record notes one request. A zero status with a non-nil err is a transport
// failure and contributes no latency sample.
func (s *Stats) Record(latency time.Duration, status int, cacheHit bool, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if status >= 200 && status < 300 {
		s.success.Add(1)
	} else {
		s.errors.Add(1)
	}
	if cacheHit {
		s.cacheHits.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, latency)
	s.statusCodes[status]++
	s.mu.Unlock()
}

func (s *Stats) Total() int64 { return s.total.Load() }

func (s *Stats) sortedLatencies() []time.Duration {
	s.mu.Lock()
	out := make([]time.Duration, len(s.latencies))
	copy(out, s.latencies)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Report writes a summary for the kind name over the given wall time.
func (s *Stats) Report(w io.Writer, name string, elapsed time.Duration) {
	total := s.total.Load()
	fmt.Fprintf(w, "=== %s ===\n", name)
	fmt.Fprintf(w, "Requests:      %d\n", total)
	fmt.Fprintf(w, "Successful:    %d\n", s.success.Load())
	fmt.Fprintf(w, "Errors:        %d\n", s.errors.Load())
	if total == 0 {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "Error rate:    %.2f%%\n", float64(s.errors.Load())/float64(total)*100)
	fmt.Fprintf(w, "Cache hits:    %d\n", s.cacheHits.Load())
	fmt.Fprintf(w, "Requests/sec:  %.2f\n", float64(total)/elapsed.Seconds())

	latencies := s.sortedLatencies()
	if len(latencies) > 0 {
		fmt.Fprintf(w, "Latency p50:   %s\n", percentile(latencies, 50))
		fmt.Fprintf(w, "Latency p95:   %s\n", percentile(latencies, 95))
		fmt.Fprintf(w, "Latency p99:   %s\n", percentile(latencies, 99))
		fmt.Fprintf(w, "Latency max:   %s\n", latencies[len(latencies)-1])
	}

	s.mu.Lock()
	codes := make([]int, 0, len(s.statusCodes))
	for code := range s.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  status %d:  %d\n", code, s.statusCodes[code])
	}
	s.mu.Unlock()
	fmt.Fprintln(w)
}

// percentile returns the nearest-rank p-th percentile of sorted.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
