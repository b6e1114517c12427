package event

// Buffer and cursor topics.
const (
	// TopicTextInserting is published before the buffer content is modified.
	TopicTextInserting Topic = "buffer.text.inserting"

	// TopicTextChanged is published after the buffer content was modified.
	TopicTextChanged Topic = "buffer.text.changed"

	// TopicCaretMoved is published when the caret offset changes.
	TopicCaretMoved Topic = "cursor.moved"
)

// TextInserting describes an edit that is about to be applied.
// Offsets are rune offsets into the text before the edit.
type TextInserting struct {
	Start int
	End   int
	Text  string
}

// TextChanged carries the full text after an edit.
type TextChanged struct {
	Text     string
	Revision uint64
}

// CaretMoved carries the previous and new caret offsets.
type CaretMoved struct {
	Old int
	New int
}
