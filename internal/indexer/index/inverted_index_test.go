package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var texts = []string{
	"Programación Avanzada Informática Ana López",
	"Introducción a Bases de Datos Informática Juan Pérez",
	"Curso Básico de Excel Ofimática Ana López",
}

func TestBuild(t *testing.T) {
	idx := Build(texts)
	assert.Equal(t, 3, idx.DocCount())

	assert.Equal(t, []uint32{0}, idx.Postings("programa").Ordinals())
	assert.Equal(t, []uint32{0, 1}, idx.Postings("informatica").Ordinals())
	assert.Equal(t, []uint32{0, 2}, idx.Postings("ana").Ordinals())
	assert.Equal(t, []uint32{1, 2}, idx.Postings("de").Ordinals())
	assert.Nil(t, idx.Postings("a"))
	assert.False(t, idx.Contains("programacion"))
	assert.True(t, idx.Contains("bas"))
}

func TestEveryTermHasPostings(t *testing.T) {
	idx := Build(texts)
	require.NotZero(t, idx.Len())
	terms := idx.Terms()
	assert.IsIncreasing(t, terms)
	for _, term := range terms {
		assert.False(t, idx.Postings(term).IsEmpty(), term)
	}
	snap := idx.Snapshot()
	require.Len(t, snap, len(terms))
	for i, e := range snap {
		assert.Equal(t, terms[i], e.Term)
		assert.Positive(t, e.DocFreq)
	}
}

func TestFuzzyMatch(t *testing.T) {
	idx := Build(texts)

	assert.Equal(t, []uint32{0}, idx.FuzzyMatch([]string{"prgrama"}).Ordinals())
	assert.Equal(t, []uint32{0, 1}, idx.FuzzyMatch([]string{"informatca"}).Ordinals())
	assert.Equal(t, []uint32{0, 1, 2}, idx.FuzzyMatch([]string{"prgrama", "excl", "pere"}).Ordinals())
	assert.True(t, idx.FuzzyMatch([]string{"zzzzzz"}).IsEmpty())
	assert.True(t, idx.FuzzyMatch(nil).IsEmpty())
}

func TestEmptyCorpus(t *testing.T) {
	idx := Build(nil)
	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.DocCount())
	assert.True(t, idx.FuzzyMatch([]string{"ana"}).IsEmpty())
}

func TestPostingSetAlgebra(t *testing.T) {
	a := PostingSetOf(1, 2, 3)
	b := PostingSetOf(2, 3, 4)

	inter := a.Clone()
	inter.Intersect(b)
	assert.Equal(t, []uint32{2, 3}, inter.Ordinals())
	assert.Equal(t, []uint32{1, 2, 3}, a.Ordinals())

	union := a.Clone()
	union.Union(b)
	assert.Equal(t, 4, union.Len())

	full := FullPostingSet(3)
	assert.Equal(t, []uint32{0, 1, 2}, full.Ordinals())

	var visited []uint32
	union.ForEach(func(o uint32) bool {
		visited = append(visited, o)
		return len(visited) < 2
	})
	assert.Equal(t, []uint32{1, 2}, visited)
}
