// Package event provides the synchronous event bus between a text buffer and
// the components that react to it.
//
// The buffer publishes what happened (text about to be inserted, text
// changed, caret moved) and never calls its listeners directly. Listeners
// subscribe by topic pattern.
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	buffer.text.inserting  - Text is about to be inserted or deleted
//	buffer.text.changed    - The buffer content changed
//	cursor.moved           - The caret offset changed
//
// # Wildcard Patterns
//
//	buffer.*     - matches buffer.text (single segment)
//	buffer.**    - matches buffer.text.changed, buffer.a.b.c (multi-segment)
//
// # Delivery
//
// Delivery is synchronous: Publish runs every matching handler in the
// publisher's goroutine, in priority order, and returns after the last one.
// A publisher that emits "text changed" and then "caret moved" is therefore
// guaranteed that every handler finished the first event before the second
// is delivered.
//
// Handler panics are recovered and reported as *PanicError to the configured
// error handler; they never reach the publisher.
package event
