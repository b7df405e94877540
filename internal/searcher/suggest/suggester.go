// Package suggest produces typeahead suggestions from course titles,
// instructors and categories.
package suggest

import (
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/tokenizer"
)

const DefaultLimit = 5

// fieldTerms holds the tokenized suggestion fields of one course.
type fieldTerms struct {
	title      []string
	instructor []string
	category   []string
}

type Suggester struct {
	engine *indexer.Engine
	fields []fieldTerms
	logger *slog.Logger
}

// New tokenizes every course's suggestion fields once.
func New(engine *indexer.Engine) *Suggester {
	fields := make([]fieldTerms, engine.Len())
	for i, c := range engine.Courses() {
		fields[i] = fieldTerms{
			title:      tokenizer.Terms(c.Title),
			instructor: tokenizer.Terms(c.Instructor),
			category:   tokenizer.Terms(c.Category),
		}
	}
	return &Suggester{
		engine: engine,
		fields: fields,
		logger: slog.Default().With("component", "suggester"),
	}
}

// distinct is an insertion-ordered set of field values, remembering the first
// course each value was seen on.
type distinct struct {
	seen   map[string]struct{}
	values []string
	source []uint32
}

func newDistinct() *distinct {
	return &distinct{seen: make(map[string]struct{})}
}

func (d *distinct) add(value string, ordinal uint32) {
	if _, ok := d.seen[value]; ok {
		return
	}
	d.seen[value] = struct{}{}
	d.values = append(d.values, value)
	d.source = append(d.source, ordinal)
}

func (d *distinct) len() int {
	return len(d.values)
}

// Suggest returns up to limit titles, then up to limit instructors, then up
// to limit categories matching query. Only the first query term is used as a
// prefix; when any field has fewer than limit matches, all three fields are
// topped up from the fuzzy matches of every query term. A non-positive limit
// means DefaultLimit.
func (s *Suggester) Suggest(query string, limit int) []catalog.Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := []catalog.Suggestion{}
	if query == "" {
		return out
	}
	terms := tokenizer.Terms(query)
	if len(terms) == 0 {
		return out
	}
	prefix := terms[0]

	titles, instructors, categories := newDistinct(), newDistinct(), newDistinct()
	for i, f := range s.fields {
		ord := uint32(i)
		c := s.engine.Course(ord)
		if hasPrefix(f.title, prefix) {
			titles.add(c.Title, ord)
		}
		if hasPrefix(f.instructor, prefix) {
			instructors.add(c.Instructor, ord)
		}
		if hasPrefix(f.category, prefix) {
			categories.add(c.Category, ord)
		}
	}

	fuzzy := false
	if titles.len() < limit || instructors.len() < limit || categories.len() < limit {
		fuzzy = true
		s.engine.Index().FuzzyMatch(terms).ForEach(func(ord uint32) bool {
			c := s.engine.Course(ord)
			titles.add(c.Title, ord)
			instructors.add(c.Instructor, ord)
			categories.add(c.Category, ord)
			return true
		})
	}

	for i, title := range titles.values[:min(limit, titles.len())] {
		ord := titles.source[i]
		c := s.engine.Course(ord)
		sug := catalog.Suggestion{Text: title, Kind: catalog.KindTitle, Course: &c}
		if hasPrefix(s.fields[ord].instructor, prefix) {
			sug.Reason = reason(catalog.ReasonInstructor, c.Instructor, query)
		}
		out = append(out, sug)
	}
	for i, name := range instructors.values[:min(limit, instructors.len())] {
		c := s.engine.Course(instructors.source[i])
		out = append(out, catalog.Suggestion{
			Text:   name,
			Kind:   catalog.KindInstructor,
			Course: &c,
			Reason: reason(catalog.ReasonInstructor, name, query),
		})
	}
	for i, category := range categories.values[:min(limit, categories.len())] {
		c := s.engine.Course(categories.source[i])
		out = append(out, catalog.Suggestion{
			Text:   category,
			Kind:   catalog.KindCategory,
			Course: &c,
			Reason: reason(catalog.ReasonCategory, category, query),
		})
	}

	s.logger.Debug("suggestions built",
		"query", query,
		"prefix", prefix,
		"fuzzy", fuzzy,
		"titles", titles.len(),
		"instructors", instructors.len(),
		"categories", categories.len(),
	)
	return out
}

func reason(label, value, query string) *catalog.Reason {
	return &catalog.Reason{
		Label:            label,
		Value:            value,
		HighlightedValue: Highlight(value, query),
	}
}

func hasPrefix(terms []string, prefix string) bool {
	for _, t := range terms {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}
