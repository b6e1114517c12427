// Package autopair inserts and skips closing brackets as the user types.
//
// It sits between key input and the buffer. Every keystroke first clears
// the bracket highlight, edits the buffer, then asks the highlighter to
// recompute at the caret. Typing the opening character inserts the closing
// one too and leaves the caret between them; typing the closing character
// right before an existing closing character steps over it.
package autopair

import (
	"github.com/dshills/brackets/internal/bracket"
	"github.com/dshills/brackets/internal/style"
)

// Editor is the buffer surface the handler edits.
type Editor interface {
	Length() int
	RuneAt(offset int) (rune, bool)
	CaretPosition() int
	Insert(offset int, text string, tags style.Set) error
	Delete(from, to int) error
	MoveTo(offset int) error
}

// Highlighter is the bracket highlighter the handler refreshes.
type Highlighter interface {
	ClearBracket()
	HighlightBracket()
}

// Handler applies typed keys to an Editor.
type Handler struct {
	editor  Editor
	hl      Highlighter
	kind    bracket.Kind
	base    style.Set
	enabled bool
}

// New creates a handler. Closing brackets it inserts carry palette's base tag.
func New(editor Editor, hl Highlighter, kind bracket.Kind, palette style.Palette) *Handler {
	return &Handler{
		editor:  editor,
		hl:      hl,
		kind:    kind,
		base:    palette.BaseSet(),
		enabled: true,
	}
}

// SetEnabled turns pairing on or off. When off, KeyTyped inserts the rune
// as typed but still refreshes the highlight.
func (h *Handler) SetEnabled(enabled bool) {
	h.enabled = enabled
}

// KeyTyped inserts r at the caret.
func (h *Handler) KeyTyped(r rune) error {
	h.hl.ClearBracket()
	defer h.hl.HighlightBracket()

	pos := h.editor.CaretPosition()

	switch {
	case h.enabled && r == h.kind.Open:
		if err := h.editor.Insert(pos, string(h.kind.Open), nil); err != nil {
			return err
		}
		if err := h.editor.Insert(pos+1, string(h.kind.Close), h.base); err != nil {
			return err
		}
		return h.editor.MoveTo(pos + 1)

	case h.enabled && r == h.kind.Close && h.nextIsClose(pos):
		return h.editor.MoveTo(pos + 1)
	}

	return h.editor.Insert(pos, string(r), nil)
}

// Backspace deletes the rune before the caret.
func (h *Handler) Backspace() error {
	pos := h.editor.CaretPosition()
	if pos == 0 {
		return nil
	}
	h.hl.ClearBracket()
	defer h.hl.HighlightBracket()
	return h.editor.Delete(pos-1, pos)
}

// DeleteForward deletes the rune after the caret.
func (h *Handler) DeleteForward() error {
	pos := h.editor.CaretPosition()
	if pos >= h.editor.Length() {
		return nil
	}
	h.hl.ClearBracket()
	defer h.hl.HighlightBracket()
	return h.editor.Delete(pos, pos+1)
}

func (h *Handler) nextIsClose(pos int) bool {
	r, ok := h.editor.RuneAt(pos)
	return ok && r == h.kind.Close
}
