package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/ranker"
)

// DefaultFuzzyThreshold is the candidate count below which the fuzzy pass
// runs.
const DefaultFuzzyThreshold = 10

type SearchResult struct {
	Query        string           `json:"query"`
	Filters      catalog.Filters  `json:"filters"`
	TotalHits    int              `json:"total_hits"`
	Results      []catalog.Course `json:"results"`
	ExactHits    int              `json:"exact_hits"`
	FuzzyApplied bool             `json:"fuzzy_applied"`
}

type Executor struct {
	engine         *indexer.Engine
	fuzzyThreshold int
	logger         *slog.Logger
}

func New(engine *indexer.Engine, fuzzyThreshold int) *Executor {
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}
	return &Executor{
		engine:         engine,
		fuzzyThreshold: fuzzyThreshold,
		logger:         slog.Default().With("component", "query-executor"),
	}
}

// Execute runs the uncached search pipeline: candidate generation, facet
// filtering and title ordering.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, filters catalog.Filters) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("executing query %q: %w", plan.RawQuery, err)
	}
	result := &SearchResult{
		Query:   plan.RawQuery,
		Filters: filters,
	}
	if plan.Empty() && !filters.Active() {
		result.Results = e.engine.Courses()
		result.TotalHits = len(result.Results)
		return result, nil
	}

	var candidates *index.PostingSet
	if plan.Empty() {
		candidates = index.FullPostingSet(e.engine.Len())
	} else {
		candidates = e.exactCandidates(plan.Terms)
		result.ExactHits = candidates.Len()
		if candidates.Len() < e.fuzzyThreshold {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("executing query %q: %w", plan.RawQuery, err)
			}
			candidates.Union(e.engine.Index().FuzzyMatch(plan.Terms))
			result.FuzzyApplied = true
		}
	}

	if filters.Active() {
		e.engine.Facets().Apply(candidates, filters)
	}

	result.Results = e.engine.Resolve(candidates)
	ranker.SortByTitle(result.Results)
	result.TotalHits = len(result.Results)

	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"exact_hits", result.ExactHits,
		"fuzzy", result.FuzzyApplied,
		"results", result.TotalHits,
	)
	return result, nil
}

// exactCandidates starts from the postings of the first term. Each later
// term narrows the set only when it is indexed; unknown later terms are
// ignored, while an unknown first term yields an empty set.
func (e *Executor) exactCandidates(terms []string) *index.PostingSet {
	if len(terms) == 0 {
		return index.NewPostingSet()
	}
	idx := e.engine.Index()
	first := idx.Postings(terms[0])
	if first == nil {
		return index.NewPostingSet()
	}
	candidates := first.Clone()
	for _, term := range terms[1:] {
		postings := idx.Postings(term)
		if postings == nil {
			continue
		}
		candidates.Intersect(postings)
	}
	return candidates
}
