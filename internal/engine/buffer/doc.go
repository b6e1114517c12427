// Package buffer provides a thread-safe text buffer with per-character
// decoration tags and a single caret.
//
// Offsets are rune offsets. Every character carries a style.Set that
// decorators change through SetStyle; inserted text takes the tags passed
// to Insert.
//
// When the buffer has an event bus it publishes, in this order, for every
// edit:
//
//   - event.TopicTextInserting before the content changes
//   - event.TopicTextChanged with the full new text
//   - event.TopicCaretMoved if the edit shifted the caret
//
// MoveTo publishes only event.TopicCaretMoved. Events are published after
// the buffer lock is released, so handlers may read the buffer and call
// SetStyle. Handlers must not edit the buffer from inside a delivery: edits
// are serialised and a nested edit would wait on itself.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("a[b]c", buffer.WithBus(bus))
//	_ = buf.MoveTo(2)
//	_ = buf.Insert(buf.CaretPosition(), "x", nil)
package buffer
