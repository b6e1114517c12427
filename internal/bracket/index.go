package bracket

import (
	"fmt"
	"sort"
)

// Pair is a matched bracket pair with Start < End.
type Pair struct {
	Start int
	End   int
}

// NewPair orders the two offsets so that Start <= End.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Start: a, End: b}
}

// Offsets returns both offsets, start first.
func (p Pair) Offsets() [2]int {
	return [2]int{p.Start, p.End}
}

// String returns a debug representation of the pair.
func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.Start, p.End)
}

// Index is a symmetric offset-to-offset mapping of matched brackets
// for one version of a text.
type Index struct {
	kind     Kind
	partners map[int]int
	length   int
}

// Empty returns an index with no pairs.
func Empty(kind Kind) *Index {
	return &Index{kind: kind, partners: make(map[int]int)}
}

// Rebuild scans text once from left to right and returns the index of
// every matched bracket pair.
//
// Pending opening offsets are kept on a stack. An opening character pushes
// its offset; a closing character pops the most recent pending open and
// records the pair in both directions, or is skipped when nothing is open.
// Opens still pending at the end of the text stay unindexed.
func Rebuild(text string, kind Kind) *Index {
	idx := Empty(kind)

	var stack []int
	offset := 0
	for _, r := range text {
		switch r {
		case kind.Open:
			stack = append(stack, offset)
		case kind.Close:
			if n := len(stack); n > 0 {
				k := stack[n-1]
				stack = stack[:n-1]
				idx.partners[k] = offset
				idx.partners[offset] = k
			}
		}
		offset++
	}
	idx.length = offset

	return idx
}

// Partner returns the offset matched with offset, if any.
func (idx *Index) Partner(offset int) (int, bool) {
	if idx == nil {
		return 0, false
	}
	other, ok := idx.partners[offset]
	return other, ok
}

// Contains reports whether offset is a matched bracket.
func (idx *Index) Contains(offset int) bool {
	_, ok := idx.Partner(offset)
	return ok
}

// Len returns the number of indexed offsets (twice the number of pairs).
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.partners)
}

// TextLength returns the rune length of the text the index was built from.
func (idx *Index) TextLength() int {
	if idx == nil {
		return 0
	}
	return idx.length
}

// Kind returns the bracket kind the index was built for.
func (idx *Index) Kind() Kind {
	if idx == nil {
		return DefaultKind
	}
	return idx.kind
}

// Pairs returns every pair once, ordered by start offset.
func (idx *Index) Pairs() []Pair {
	if idx == nil {
		return nil
	}
	pairs := make([]Pair, 0, len(idx.partners)/2)
	for k, v := range idx.partners {
		if k < v {
			pairs = append(pairs, Pair{Start: k, End: v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Start < pairs[j].Start
	})
	return pairs
}

// Unmatched returns the offsets of bracket characters in text that are not
// in the index, in ascending order. text should be the version the index
// was built from.
func (idx *Index) Unmatched(text string) []int {
	kind := idx.Kind()
	var out []int
	offset := 0
	for _, r := range text {
		if kind.IsBracket(r) && !idx.Contains(offset) {
			out = append(out, offset)
		}
		offset++
	}
	return out
}
