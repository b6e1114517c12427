// Package session highlights the bracket pair at the caret of a host buffer.
//
// A Session owns the bracket index of the host's current text and the pair
// it last highlighted. It reacts to two notifications:
//
//   - text changed: clear the active highlight and rebuild the index
//   - caret moved:  clear the active highlight, then highlight the pair
//     enclosing or adjacent to the new caret
//
// A caret just after a bracket behaves like a caret just before it, so both
// sides of "[x]" light up whether the caret sits at 0, 1 or 3.
//
// Every entry point runs under one mutex that guards the index and the
// active pair together. A rebuild is never seen half done, and the clear and
// apply steps of one event are never interleaved with another event's.
//
// Decorations are written through Host.SetStyle. Before each write the
// session re-reads the host text: an offset that is past the end or no
// longer holds a bracket character is skipped. Nothing in this package
// returns an error; every bad state degrades to "no decoration".
package session
