// Package parser turns raw request input into a query plan and a filter
// set.
package parser

import (
	"net/url"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/tokenizer"
)

// Filter query parameter names.
const (
	ParamCategory = "category"
	ParamDuration = "duration"
	ParamLevel    = "level"
)

// QueryPlan is a tokenized query. Terms keep query order; the first term
// gates the exact pass.
type QueryPlan struct {
	RawQuery string
	Terms    []string
}

// Empty reports whether the raw query is the empty string. A query of only
// punctuation or short words is not empty; it simply has no terms.
func (p *QueryPlan) Empty() bool {
	return p.RawQuery == ""
}

func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		RawQuery: query,
		Terms:    make([]string, 0),
	}
	if query == "" {
		return plan
	}
	plan.Terms = append(plan.Terms, tokenizer.Terms(query)...)
	return plan
}

// ParseFilters reads the category, duration and level parameters. Each may
// repeat and may hold a comma separated list. Empty ids are dropped.
func ParseFilters(values url.Values) catalog.Filters {
	return catalog.Filters{
		Categories: splitParam(values[ParamCategory]),
		Durations:  splitParam(values[ParamDuration]),
		Levels:     splitParam(values[ParamLevel]),
	}
}

func splitParam(raw []string) []string {
	var ids []string
	for _, v := range raw {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
