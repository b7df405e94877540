// Package facet classifies courses along three filter dimensions (category,
// duration bucket and difficulty level) and keeps one posting set per
// option so filters resolve to set operations.
package facet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
)

// Dimension identifies one facet family.
type Dimension int

const (
	Category Dimension = iota
	Duration
	Level
	numDimensions
)

func (d Dimension) String() string {
	switch d {
	case Category:
		return "category"
	case Duration:
		return "duration"
	case Level:
		return "level"
	default:
		return "unknown"
	}
}

// Dimensions lists every facet family in display order.
var Dimensions = []Dimension{Category, Duration, Level}

// Duration bucket ids.
const (
	DurationShort  = "short"
	DurationMedium = "medium"
	DurationLong   = "long"
)

// Level ids.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

const (
	shortLimitMinutes  = 180
	mediumLimitMinutes = 360
)

var durationOptions = []catalog.FacetOption{
	{ID: DurationShort, Label: "Corta (< 3h)"},
	{ID: DurationMedium, Label: "Media (3-6h)"},
	{ID: DurationLong, Label: "Larga (> 6h)"},
}

var levelOptions = []catalog.FacetOption{
	{ID: LevelBeginner, Label: "Principiante"},
	{ID: LevelIntermediate, Label: "Intermedio"},
	{ID: LevelAdvanced, Label: "Avanzado"},
}

// Index holds the options and membership of every dimension.
type Index struct {
	options [numDimensions][]catalog.FacetOption
	members [numDimensions]map[string]*index.PostingSet
}

// Build classifies every course. The ordinal of courses[i] is i. It fails
// with ErrMalformedDuration on the first duration that is not H:MM.
func Build(courses []catalog.Course) (*Index, error) {
	idx := &Index{}
	for _, d := range Dimensions {
		idx.members[d] = make(map[string]*index.PostingSet)
	}
	idx.options[Duration] = cloneOptions(durationOptions)
	idx.options[Level] = cloneOptions(levelOptions)

	categoryPos := make(map[string]int)
	for i, c := range courses {
		ord := uint32(i)

		catID := CategoryID(c.Category)
		if pos, ok := categoryPos[c.Category]; ok {
			idx.options[Category][pos].Count++
		} else {
			categoryPos[c.Category] = len(idx.options[Category])
			idx.options[Category] = append(idx.options[Category], catalog.FacetOption{
				ID:    catID,
				Label: c.Category,
				Count: 1,
			})
		}
		idx.add(Category, catID, ord)

		minutes, err := ParseDuration(c.Duration)
		if err != nil {
			return nil, fmt.Errorf("classifying course %q: %w", c.ID, apperrors.MalformedDuration(c.ID, c.Duration))
		}
		bucket := DurationBucket(minutes)
		idx.count(Duration, bucket)
		idx.add(Duration, bucket, ord)

		level := LevelOf(c.Title)
		idx.count(Level, level)
		idx.add(Level, level, ord)
	}
	return idx, nil
}

func (x *Index) add(d Dimension, id string, ord uint32) {
	p, ok := x.members[d][id]
	if !ok {
		p = index.NewPostingSet()
		x.members[d][id] = p
	}
	p.Add(ord)
}

func (x *Index) count(d Dimension, id string) {
	for i := range x.options[d] {
		if x.options[d][i].ID == id {
			x.options[d][i].Count++
			return
		}
	}
}

// Options returns a copy of the options of d with their counts.
func (x *Index) Options(d Dimension) []catalog.FacetOption {
	if d < 0 || d >= numDimensions {
		return nil
	}
	return cloneOptions(x.options[d])
}

// Members returns the ordinals that belong to any of ids in dimension d.
// Unknown ids contribute nothing.
func (x *Index) Members(d Dimension, ids []string) *index.PostingSet {
	result := index.NewPostingSet()
	if d < 0 || d >= numDimensions {
		return result
	}
	for _, id := range ids {
		if p, ok := x.members[d][id]; ok {
			result.Union(p)
		}
	}
	return result
}

// Apply narrows candidates in place to the ordinals satisfying every active
// dimension of f.
func (x *Index) Apply(candidates *index.PostingSet, f catalog.Filters) {
	for _, d := range Dimensions {
		ids := Selected(f, d)
		if len(ids) == 0 {
			continue
		}
		candidates.Intersect(x.Members(d, ids))
	}
}

// Selected returns the ids f selects for dimension d.
func Selected(f catalog.Filters, d Dimension) []string {
	switch d {
	case Category:
		return f.Categories
	case Duration:
		return f.Durations
	case Level:
		return f.Levels
	default:
		return nil
	}
}

// CategoryID derives the facet id of a category label: lower-cased, with
// every rune outside [a-z0-9_] replaced by an underscore.
func CategoryID(category string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToLower(category))
}

// ParseDuration converts "H:MM" to minutes.
func ParseDuration(duration string) (int, error) {
	hours, mins, ok := strings.Cut(strings.TrimSpace(duration), ":")
	if !ok {
		return 0, fmt.Errorf("parsing duration %q: missing ':'", duration)
	}
	h, err := parseCount(hours)
	if err != nil {
		return 0, fmt.Errorf("parsing hours of %q: %w", duration, err)
	}
	m, err := parseCount(mins)
	if err != nil {
		return 0, fmt.Errorf("parsing minutes of %q: %w", duration, err)
	}
	return h*60 + m, nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty component")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric component %q", s)
		}
	}
	return strconv.Atoi(s)
}

// DurationBucket maps minutes to short, medium or long.
func DurationBucket(minutes int) string {
	switch {
	case minutes < shortLimitMinutes:
		return DurationShort
	case minutes < mediumLimitMinutes:
		return DurationMedium
	default:
		return DurationLong
	}
}

// LevelOf classifies a title by literal keywords. Only the exact words
// "básico", "introducción", "avanzado" and "superior" are recognised, so
// inflected forms such as "avanzada" fall through to intermediate.
func LevelOf(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "básico"), strings.Contains(lower, "introducción"):
		return LevelBeginner
	case strings.Contains(lower, "avanzado"), strings.Contains(lower, "superior"):
		return LevelAdvanced
	default:
		return LevelIntermediate
	}
}

func cloneOptions(opts []catalog.FacetOption) []catalog.FacetOption {
	out := make([]catalog.FacetOption, len(opts))
	copy(out, opts)
	return out
}
