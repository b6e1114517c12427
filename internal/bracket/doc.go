// Package bracket builds an index of matching bracket pairs over a text.
//
// The index maps the offset of every matched bracket character to the offset
// of its partner, in both directions. Offsets count runes, not bytes.
// Unbalanced input is normal: an opening bracket that is never closed, or a
// closing bracket with nothing open, is simply left out of the index.
//
// Basic usage:
//
//	idx := bracket.Rebuild("a[b[c]d]e", bracket.DefaultKind)
//	end, ok := idx.Partner(1) // 7, true
//
// An Index is immutable once built. Text changes are handled by building a
// new one; there is no incremental update.
package bracket
