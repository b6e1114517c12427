package session

import "github.com/dshills/brackets/internal/style"

// Host is the text buffer a Session decorates.
type Host interface {
	// Length returns the current text length in runes.
	Length() int

	// Text returns the runes in [from, to).
	Text(from, to int) string

	// RuneAt returns the character at offset, or false when offset is out
	// of range.
	RuneAt(offset int) (rune, bool)

	// CaretPosition returns the caret offset.
	CaretPosition() int

	// SetStyle replaces the tags of the characters in [from, to).
	SetStyle(from, to int, tags style.Set)
}

// State is the highlight state of a Session.
type State int

const (
	// StateIdle means no pair is highlighted.
	StateIdle State = iota
	// StateHighlighted means one pair is highlighted.
	StateHighlighted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHighlighted:
		return "highlighted"
	default:
		return "unknown"
	}
}
