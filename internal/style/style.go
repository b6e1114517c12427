// Package style defines the decoration tags applied to buffer characters.
//
// A character's decoration is a Set of Tags. Bracket highlighting only ever
// uses two sets: the base set (a bracket that is not currently matched) and
// the matched set (base plus the matched tag).
package style

import "strings"

// Tag names a single decoration class.
type Tag string

// Default tag names.
const (
	DefaultBase    Tag = "loop"
	DefaultMatched Tag = "match"
)

// Set is an ordered, duplicate-free collection of tags.
// The zero value is an empty set.
type Set []Tag

// NewSet creates a set from the given tags, dropping empties and duplicates
// while preserving first-seen order.
func NewSet(tags ...Tag) Set {
	s := make(Set, 0, len(tags))
	for _, t := range tags {
		if t == "" || s.Has(t) {
			continue
		}
		s = append(s, t)
	}
	return s
}

// Has reports whether the set contains t.
func (s Set) Has(t Tag) bool {
	for _, x := range s {
		if x == t {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold the same tags in the same order.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the set that shares no storage with s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	c := make(Set, len(s))
	copy(c, s)
	return c
}

// String renders the set as a space separated list.
func (s Set) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = string(t)
	}
	return strings.Join(parts, " ")
}

// Palette names the two tags used by bracket highlighting.
type Palette struct {
	Base    Tag
	Matched Tag
}

// DefaultPalette returns the palette with the default tag names.
func DefaultPalette() Palette {
	return Palette{Base: DefaultBase, Matched: DefaultMatched}
}

// BaseSet returns {base}.
func (p Palette) BaseSet() Set {
	return NewSet(p.Base)
}

// MatchedSet returns {base, matched}.
func (p Palette) MatchedSet() Set {
	return NewSet(p.Base, p.Matched)
}
