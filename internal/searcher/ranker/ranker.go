// Package ranker orders search results. Courses are ranked by title using
// Spanish collation; ties keep their incoming order.
package ranker

import (
	"slices"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators keep internal buffers, so each goroutine borrows its own.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.Spanish)
	},
}

// SortByTitle sorts courses in place by locale-aware title order.
func SortByTitle(courses []catalog.Course) {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	slices.SortStableFunc(courses, func(a, b catalog.Course) int {
		return c.CompareString(a.Title, b.Title)
	})
}

// CompareTitles compares two titles with Spanish collation.
func CompareTitles(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}
