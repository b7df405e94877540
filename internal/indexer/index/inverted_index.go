package index

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/fuzzy"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/indexer/tokenizer"
)

// InvertedIndex maps each term to the ordinals of the documents containing
// it. It is built once and is safe for concurrent reads.
type InvertedIndex struct {
	postings map[string]*PostingSet
	terms    []string
	docCount int
}

// Build indexes texts; the ordinal of texts[i] is i.
func Build(texts []string) *InvertedIndex {
	idx := &InvertedIndex{
		postings: make(map[string]*PostingSet),
		docCount: len(texts),
	}
	for i, text := range texts {
		for _, tok := range tokenizer.Tokenize(text) {
			p, ok := idx.postings[tok.Term]
			if !ok {
				p = NewPostingSet()
				idx.postings[tok.Term] = p
			}
			p.Add(uint32(i))
		}
	}
	idx.terms = make([]string, 0, len(idx.postings))
	for term, p := range idx.postings {
		p.optimize()
		idx.terms = append(idx.terms, term)
	}
	slices.Sort(idx.terms)
	return idx
}

// Postings returns the posting set of term, or nil when the term is not
// indexed. The returned set is shared and must not be modified.
func (m *InvertedIndex) Postings(term string) *PostingSet {
	return m.postings[term]
}

func (m *InvertedIndex) Contains(term string) bool {
	_, ok := m.postings[term]
	return ok
}

// Terms returns the vocabulary in lexical order.
func (m *InvertedIndex) Terms() []string {
	return slices.Clone(m.terms)
}

// Len returns the vocabulary size.
func (m *InvertedIndex) Len() int {
	return len(m.terms)
}

func (m *InvertedIndex) DocCount() int {
	return m.docCount
}

// FuzzyMatch unions the postings of every indexed term within edit
// tolerance of any of the query terms.
func (m *InvertedIndex) FuzzyMatch(queryTerms []string) *PostingSet {
	result := NewPostingSet()
	for _, q := range queryTerms {
		maxDist := fuzzy.MaxDistance(q)
		for _, term := range m.terms {
			if fuzzy.Distance(q, term) <= maxDist {
				result.Union(m.postings[term])
			}
		}
	}
	return result
}

// Snapshot lists every term with its document frequency, in lexical order.
func (m *InvertedIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(m.terms))
	for _, term := range m.terms {
		entries = append(entries, TermEntry{
			Term:    term,
			DocFreq: m.postings[term].Len(),
		})
	}
	return entries
}
