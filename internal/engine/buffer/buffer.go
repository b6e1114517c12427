package buffer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/dshills/brackets/internal/event"
	"github.com/dshills/brackets/internal/style"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer holds text, per-character styles and the caret.
// All methods are thread-safe.
type Buffer struct {
	// editMu serialises edit-and-publish sequences.
	editMu sync.Mutex

	mu       sync.RWMutex
	text     []rune
	styles   []style.Set
	caret    int
	revision uint64
	tabWidth int

	bus    event.Bus
	source string
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		tabWidth: 4,
		source:   "buffer",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer with initial content.
// No events are published for the initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.text = []rune(normalizeLineEndings(s))
	b.styles = make([]style.Set, len(b.text))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeLineEndings converts \r\n and lone \r to \n, so that every
// line break is exactly one rune.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Read Operations

// String returns the full buffer content.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

// Length returns the number of runes in the buffer.
func (b *Buffer) Length() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// Text returns the runes in [from, to). Out-of-range bounds are clamped;
// an empty or inverted range yields "".
func (b *Buffer) Text(from, to int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	from = clamp(from, 0, len(b.text))
	to = clamp(to, 0, len(b.text))
	if from >= to {
		return ""
	}
	return string(b.text[from:to])
}

// RuneAt returns the rune at offset.
func (b *Buffer) RuneAt(offset int) (rune, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= len(b.text) {
		return 0, false
	}
	return b.text[offset], true
}

// StyleAt returns a copy of the tags on the character at offset.
func (b *Buffer) StyleAt(offset int) style.Set {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= len(b.styles) {
		return nil
	}
	return b.styles[offset].Clone()
}

// CaretPosition returns the caret offset.
func (b *Buffer) CaretPosition() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.caret
}

// Revision returns a counter incremented on every content change.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// Decoration

// SetStyle replaces the tags of every character in [from, to).
// The range is clamped to the buffer.
func (b *Buffer) SetStyle(from, to int, tags style.Set) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from = clamp(from, 0, len(b.styles))
	to = clamp(to, 0, len(b.styles))
	for i := from; i < to; i++ {
		b.styles[i] = tags.Clone()
	}
}

// Write Operations

// Insert inserts text at offset, tagging every inserted character with tags.
// A caret at or after offset moves right by the inserted length.
func (b *Buffer) Insert(offset int, text string, tags style.Set) error {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	b.mu.RLock()
	n := len(b.text)
	b.mu.RUnlock()
	if offset < 0 || offset > n {
		return ErrOffsetOutOfRange
	}

	text = normalizeLineEndings(text)
	if text == "" {
		return nil
	}
	b.publish(event.NewEvent(event.TopicTextInserting, event.TextInserting{Start: offset, End: offset, Text: text}, b.source))

	runes := []rune(text)
	b.mu.Lock()
	b.text = splice(b.text, offset, offset, runes)
	added := make([]style.Set, len(runes))
	for i := range added {
		added[i] = tags.Clone()
	}
	b.styles = splice(b.styles, offset, offset, added)
	oldCaret := b.caret
	if b.caret >= offset {
		b.caret += len(runes)
	}
	changed := b.commitLocked()
	newCaret := b.caret
	b.mu.Unlock()

	b.publishEdit(changed, oldCaret, newCaret)
	return nil
}

// Delete removes the runes in [from, to).
// A caret inside the range moves to from; a caret after it shifts left.
func (b *Buffer) Delete(from, to int) error {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	b.mu.RLock()
	n := len(b.text)
	b.mu.RUnlock()
	if from < 0 || from > to || to > n {
		return ErrRangeInvalid
	}
	if from == to {
		return nil
	}
	b.publish(event.NewEvent(event.TopicTextInserting, event.TextInserting{Start: from, End: to}, b.source))

	b.mu.Lock()
	b.text = splice(b.text, from, to, nil)
	b.styles = splice(b.styles, from, to, nil)
	oldCaret := b.caret
	switch {
	case b.caret >= to:
		b.caret -= to - from
	case b.caret > from:
		b.caret = from
	}
	changed := b.commitLocked()
	newCaret := b.caret
	b.mu.Unlock()

	b.publishEdit(changed, oldCaret, newCaret)
	return nil
}

// SetText replaces the whole content. Styles are reset and the caret is
// clamped to the new length.
func (b *Buffer) SetText(text string) {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	text = normalizeLineEndings(text)

	b.mu.RLock()
	n := len(b.text)
	b.mu.RUnlock()
	b.publish(event.NewEvent(event.TopicTextInserting, event.TextInserting{Start: 0, End: n, Text: text}, b.source))

	b.mu.Lock()
	b.text = []rune(text)
	b.styles = make([]style.Set, len(b.text))
	oldCaret := b.caret
	b.caret = clamp(b.caret, 0, len(b.text))
	changed := b.commitLocked()
	newCaret := b.caret
	b.mu.Unlock()

	b.publishEdit(changed, oldCaret, newCaret)
}

// MoveTo places the caret at offset.
func (b *Buffer) MoveTo(offset int) error {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	b.mu.Lock()
	if offset < 0 || offset > len(b.text) {
		b.mu.Unlock()
		return ErrOffsetOutOfRange
	}
	old := b.caret
	b.caret = offset
	b.mu.Unlock()

	if old != offset {
		b.publish(event.NewEvent(event.TopicCaretMoved, event.CaretMoved{Old: old, New: offset}, b.source))
	}
	return nil
}

// commitLocked bumps the revision and returns the text-changed payload.
func (b *Buffer) commitLocked() event.TextChanged {
	b.revision++
	return event.TextChanged{Text: string(b.text), Revision: b.revision}
}

func (b *Buffer) publishEdit(changed event.TextChanged, oldCaret, newCaret int) {
	b.publish(event.NewEvent(event.TopicTextChanged, changed, b.source))
	if oldCaret != newCaret {
		b.publish(event.NewEvent(event.TopicCaretMoved, event.CaretMoved{Old: oldCaret, New: newCaret}, b.source))
	}
}

// publish sends ev on the bus, if one is set. Must be called without b.mu
// held so that handlers can read the buffer.
func (b *Buffer) publish(ev event.TopicProvider) {
	if b.bus == nil {
		return
	}
	// Handler failures are reported by the bus itself.
	_ = b.bus.Publish(context.Background(), ev)
}

func splice[T any](s []T, from, to int, insert []T) []T {
	out := make([]T, 0, len(s)-(to-from)+len(insert))
	out = append(out, s[:from]...)
	out = append(out, insert...)
	return append(out, s[to:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
