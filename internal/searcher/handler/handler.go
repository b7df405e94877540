// Package handler exposes a Searcher over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/tracing"
)

// Tracker accepts analytics events. Both analytics collectors satisfy it.
type Tracker interface {
	Track(key string, event any)
}

type Handler struct {
	searcher      *searcher.Searcher
	cfg           config.SearchConfig
	searchEvents  Tracker
	suggestEvents Tracker
	sampler       *tracing.Sampler
	logger        *slog.Logger
}

type Option func(*Handler)

// WithSearchTracker reports search and course view events to t.
func WithSearchTracker(t Tracker) Option {
	return func(h *Handler) { h.searchEvents = t }
}

// WithSuggestTracker reports typeahead events to t.
func WithSuggestTracker(t Tracker) Option {
	return func(h *Handler) { h.suggestEvents = t }
}

func WithSampler(s *tracing.Sampler) Option {
	return func(h *Handler) { h.sampler = s }
}

func New(s *searcher.Searcher, cfg config.SearchConfig, opts ...Option) *Handler {
	h := &Handler{
		searcher: s,
		cfg:      cfg,
		logger:   slog.Default().With("component", "search-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the catalog API on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/facets", h.Facets)
	mux.HandleFunc("GET /api/v1/courses/{id}", h.Course)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type searchResponse struct {
	Query        string           `json:"query"`
	Filters      catalog.Filters  `json:"filters"`
	TotalHits    int              `json:"total_hits"`
	Results      []catalog.Course `json:"results"`
	FuzzyApplied bool             `json:"fuzzy_applied"`
	CacheHit     bool             `json:"cache_hit"`
	LatencyMs    int64            `json:"latency_ms"`
}

// Search handles GET /api/v1/search?q=&category=&duration=&level=. A missing
// query with no filters lists the whole catalog.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, finish := h.trace(r, "http.search")
	defer finish()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	filters := parser.ParseFilters(r.URL.Query())

	result, cacheHit, err := h.searcher.Do(ctx, query, filters)
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeAppError(w, err)
		return
	}
	latency := time.Since(start)

	log.Info("search completed",
		"query", query,
		"filters", filters.Canonical(),
		"total_hits", result.TotalHits,
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.searchEvents != nil {
		h.searchEvents.Track(string(analytics.EventSearch), analytics.SearchEvent{
			Type:         analytics.EventSearch,
			Query:        query,
			Terms:        parser.Parse(query).Terms,
			Filters:      filters,
			TotalHits:    result.TotalHits,
			ExactHits:    result.ExactHits,
			FuzzyApplied: result.FuzzyApplied,
			LatencyMs:    latency.Milliseconds(),
			CacheHit:     cacheHit,
			Timestamp:    time.Now().UTC(),
			RequestID:    middleware.GetRequestID(ctx),
		})
	}

	results := result.Results
	if results == nil {
		results = []catalog.Course{}
	}
	h.writeJSON(w, http.StatusOK, searchResponse{
		Query:        query,
		Filters:      filters,
		TotalHits:    result.TotalHits,
		Results:      results,
		FuzzyApplied: result.FuzzyApplied,
		CacheHit:     cacheHit,
		LatencyMs:    latency.Milliseconds(),
	})
}

type suggestResponse struct {
	Query       string               `json:"query"`
	Suggestions []catalog.Suggestion `json:"suggestions"`
}

// Suggest handles GET /api/v1/suggest?q=&limit=. Queries shorter than the
// configured minimum get no suggestions.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, finish := h.trace(r, "http.suggest")
	defer finish()

	query := r.URL.Query().Get("q")
	limit := h.cfg.SuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if h.cfg.MaxSuggestLimit > 0 && parsed > h.cfg.MaxSuggestLimit {
			parsed = h.cfg.MaxSuggestLimit
		}
		limit = parsed
	}

	suggestions := []catalog.Suggestion{}
	if utf8.RuneCountInString(strings.TrimSpace(query)) >= h.cfg.MinSuggestLength {
		suggestions = h.searcher.Suggest(query, limit)
	}

	if h.suggestEvents != nil {
		h.suggestEvents.Track(string(analytics.EventSuggest), analytics.SuggestEvent{
			Type:      analytics.EventSuggest,
			Query:     query,
			Returned:  len(suggestions),
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, suggestResponse{Query: query, Suggestions: suggestions})
}

type facetsResponse struct {
	Categories []catalog.FacetOption `json:"categories"`
	Durations  []catalog.FacetOption `json:"durations"`
	Levels     []catalog.FacetOption `json:"levels"`
}

func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, facetsResponse{
		Categories: h.searcher.Categories(),
		Durations:  h.searcher.Durations(),
		Levels:     h.searcher.Levels(),
	})
}

// Course handles GET /api/v1/courses/{id}.
func (h *Handler) Course(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	course, ok := h.searcher.Course(id)
	if !ok {
		h.writeAppError(w, pkgerrors.Newf(pkgerrors.ErrCourseNotFound, http.StatusNotFound, "no course with id %q", id))
		return
	}
	if h.searchEvents != nil {
		h.searchEvents.Track(string(analytics.EventCourseView), analytics.CourseViewEvent{
			Type:      analytics.EventCourseView,
			CourseID:  course.ID,
			Category:  course.Category,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(r.Context()),
		})
	}
	h.writeJSON(w, http.StatusOK, course)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.searcher.Cache().Stats()
	total := stats.Hits + stats.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	body := map[string]any{
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"total":     total,
		"hit_rate":  strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
		"entries":   stats.Entries,
		"evictions": stats.Evictions,
		"capacity":  stats.Capacity,
		"remote":    stats.Remote,
	}
	if stats.Breaker != nil {
		body["breaker"] = stats.Breaker
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.searcher.Cache().Invalidate(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// trace starts a root span for sampled requests. The returned func ends and
// logs it.
func (h *Handler) trace(r *http.Request, name string) (context.Context, func()) {
	ctx := r.Context()
	if !h.sampler.Sample() {
		return ctx, func() {}
	}
	ctx, span := tracing.StartSpan(ctx, name, middleware.GetRequestID(ctx))
	return ctx, func() {
		span.End()
		span.Log(logger.FromContext(ctx))
	}
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = pkgerrors.New(pkgerrors.ErrTimeout, http.StatusServiceUnavailable, err.Error())
	}
	status := pkgerrors.HTTPStatusCode(err)
	message := http.StatusText(status)
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Error()
	}
	h.writeError(w, status, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
