// Package catalog defines the course records served by the search engine,
// the filter and facet types exchanged with callers, and the loaders that
// produce an immutable corpus snapshot.
package catalog

import (
	"slices"
	"strings"
)

// Course is one searchable document. Identity is ID.
type Course struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Category   string `json:"category" yaml:"category"`
	Instructor string `json:"instructor" yaml:"instructor"`
	Duration   string `json:"duration" yaml:"duration"`
	Thumbnail  string `json:"thumbnail" yaml:"thumbnail"`
	ViewCount  string `json:"viewCount" yaml:"viewCount"`
}

// SearchText is the text fed to the inverted index for a course.
func (c Course) SearchText() string {
	return c.Title + " " + c.Category + " " + c.Instructor
}

// Filters selects facet ids per dimension. An empty dimension imposes no
// constraint.
type Filters struct {
	Categories []string `json:"categories" yaml:"categories"`
	Durations  []string `json:"durations" yaml:"durations"`
	Levels     []string `json:"levels" yaml:"levels"`
}

// Active reports whether any dimension constrains the result.
func (f Filters) Active() bool {
	return len(f.Categories) > 0 || len(f.Durations) > 0 || len(f.Levels) > 0
}

// Clear returns a filter set with every dimension unconstrained.
func (f Filters) Clear() Filters {
	return Filters{}
}

// Normalized returns a copy with the ids of every dimension sorted and
// deduplicated. Empty dimensions are nil.
func (f Filters) Normalized() Filters {
	return Filters{
		Categories: sortedIDs(f.Categories),
		Durations:  sortedIDs(f.Durations),
		Levels:     sortedIDs(f.Levels),
	}
}

// Canonical renders the filters independent of id order and repetition for
// log output. It is not injective; ids may contain the separators.
func (f Filters) Canonical() string {
	n := f.Normalized()
	return "c=" + strings.Join(n.Categories, ",") +
		"|d=" + strings.Join(n.Durations, ",") +
		"|l=" + strings.Join(n.Levels, ",")
}

func sortedIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// FacetOption is one selectable value of a facet with its document count.
type FacetOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SuggestionKind names the course field a suggestion was drawn from.
type SuggestionKind string

const (
	KindTitle      SuggestionKind = "title"
	KindInstructor SuggestionKind = "instructor"
	KindCategory   SuggestionKind = "category"
)

// Reason labels used on suggestions.
const (
	ReasonInstructor = "instructor"
	ReasonCategory   = "categoria"
)

// Reason explains why a suggestion matched.
type Reason struct {
	Label            string `json:"label"`
	Value            string `json:"value"`
	HighlightedValue string `json:"highlightedValue"`
}

// Suggestion is one typeahead proposal.
type Suggestion struct {
	Text   string         `json:"text"`
	Kind   SuggestionKind `json:"category"`
	Course *Course        `json:"course,omitempty"`
	Reason *Reason        `json:"reason,omitempty"`
}
