// Package indexer builds the immutable search structures for one corpus
// snapshot: the inverted index over course text and the facet index over
// category, duration and level.
package indexer

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/facet"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/index"
)

// Engine is a read-only index over one corpus. A corpus change requires a
// new Engine.
type Engine struct {
	courses  []catalog.Course
	byID     map[string]uint32
	inverted *index.InvertedIndex
	facets   *facet.Index
	stats    Stats
	logger   *slog.Logger
}

// Stats describes a built engine.
type Stats struct {
	Documents     int           `json:"documents"`
	Terms         int           `json:"terms"`
	BuiltAt       time.Time     `json:"built_at"`
	BuildDuration time.Duration `json:"build_duration"`
}

// New indexes courses in order. It fails on duplicate ids and on durations
// that cannot be classified.
func New(courses []catalog.Course) (*Engine, error) {
	start := time.Now()
	if err := catalog.ValidateCorpus(courses); err != nil {
		return nil, fmt.Errorf("validating corpus: %w", err)
	}

	e := &Engine{
		courses: slices.Clone(courses),
		byID:    make(map[string]uint32, len(courses)),
		logger:  slog.Default().With("component", "indexer"),
	}
	texts := make([]string, len(e.courses))
	for i, c := range e.courses {
		e.byID[c.ID] = uint32(i)
		texts[i] = c.SearchText()
	}
	e.inverted = index.Build(texts)

	facets, err := facet.Build(e.courses)
	if err != nil {
		return nil, fmt.Errorf("building facets: %w", err)
	}
	e.facets = facets

	e.stats = Stats{
		Documents:     len(e.courses),
		Terms:         e.inverted.Len(),
		BuiltAt:       time.Now().UTC(),
		BuildDuration: time.Since(start),
	}
	e.logger.Info("index built",
		"documents", e.stats.Documents,
		"terms", e.stats.Terms,
		"categories", len(facets.Options(facet.Category)),
		"duration_ms", e.stats.BuildDuration.Milliseconds(),
	)
	return e, nil
}

func (e *Engine) Len() int {
	return len(e.courses)
}

// Courses returns the corpus in its original order.
func (e *Engine) Courses() []catalog.Course {
	return slices.Clone(e.courses)
}

// Course returns the course at ordinal.
func (e *Engine) Course(ordinal uint32) catalog.Course {
	return e.courses[ordinal]
}

// Lookup finds a course by id.
func (e *Engine) Lookup(id string) (catalog.Course, bool) {
	ord, ok := e.byID[id]
	if !ok {
		return catalog.Course{}, false
	}
	return e.courses[ord], true
}

// Resolve maps ordinals to courses, preserving order.
func (e *Engine) Resolve(set *index.PostingSet) []catalog.Course {
	out := make([]catalog.Course, 0, set.Len())
	set.ForEach(func(ord uint32) bool {
		out = append(out, e.courses[ord])
		return true
	})
	return out
}

func (e *Engine) Index() *index.InvertedIndex {
	return e.inverted
}

func (e *Engine) Facets() *facet.Index {
	return e.facets
}

func (e *Engine) Categories() []catalog.FacetOption {
	return e.facets.Options(facet.Category)
}

func (e *Engine) Durations() []catalog.FacetOption {
	return e.facets.Options(facet.Duration)
}

func (e *Engine) Levels() []catalog.FacetOption {
	return e.facets.Options(facet.Level)
}

func (e *Engine) Stats() Stats {
	return e.stats
}
