package index

import "github.com/RoaringBitmap/roaring/v2"

// PostingSet is the set of document ordinals that contain a term. Ordinals
// are positions in the corpus the index was built from.
type PostingSet struct {
	rb *roaring.Bitmap
}

// NewPostingSet returns an empty set.
func NewPostingSet() *PostingSet {
	return &PostingSet{rb: roaring.New()}
}

// PostingSetOf returns a set holding the given ordinals.
func PostingSetOf(ordinals ...uint32) *PostingSet {
	return &PostingSet{rb: roaring.BitmapOf(ordinals...)}
}

// FullPostingSet returns the set {0, ..., n-1}.
func FullPostingSet(n int) *PostingSet {
	rb := roaring.New()
	rb.AddRange(0, uint64(n))
	return &PostingSet{rb: rb}
}

func (p *PostingSet) Add(ordinal uint32) {
	p.rb.Add(ordinal)
}

func (p *PostingSet) Contains(ordinal uint32) bool {
	return p.rb.Contains(ordinal)
}

func (p *PostingSet) Len() int {
	return int(p.rb.GetCardinality())
}

func (p *PostingSet) IsEmpty() bool {
	return p.rb.IsEmpty()
}

// Clone returns an independent copy.
func (p *PostingSet) Clone() *PostingSet {
	return &PostingSet{rb: p.rb.Clone()}
}

// Intersect keeps only ordinals also present in other.
func (p *PostingSet) Intersect(other *PostingSet) {
	p.rb.And(other.rb)
}

// Union adds every ordinal of other.
func (p *PostingSet) Union(other *PostingSet) {
	p.rb.Or(other.rb)
}

// Ordinals returns the members in ascending order.
func (p *PostingSet) Ordinals() []uint32 {
	return p.rb.ToArray()
}

// ForEach visits members in ascending order until fn returns false.
func (p *PostingSet) ForEach(fn func(ordinal uint32) bool) {
	it := p.rb.Iterator()
	for it.HasNext() {
		if !fn(it.Next()) {
			return
		}
	}
}

func (p *PostingSet) optimize() {
	p.rb.RunOptimize()
}

// TermEntry summarises one vocabulary term.
type TermEntry struct {
	Term    string `json:"term"`
	DocFreq int    `json:"doc_freq"`
}
