package buffer

import "github.com/dshills/brackets/internal/style"

// Snapshot is a read-only copy of the buffer at one revision.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	Runes    []rune
	Styles   []style.Set
	Caret    int
	Revision uint64
	TabWidth int
}

// Snapshot returns a consistent copy of content, styles and caret.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	runes := make([]rune, len(b.text))
	copy(runes, b.text)
	styles := make([]style.Set, len(b.styles))
	for i, s := range b.styles {
		styles[i] = s.Clone()
	}
	return Snapshot{
		Runes:    runes,
		Styles:   styles,
		Caret:    b.caret,
		Revision: b.revision,
		TabWidth: b.tabWidth,
	}
}

// Text returns the snapshot content.
func (s Snapshot) Text() string {
	return string(s.Runes)
}

// LineCol converts a rune offset to a 0-indexed line and rune column.
func (s Snapshot) LineCol(offset int) (line, col int) {
	offset = clamp(offset, 0, len(s.Runes))
	for i := 0; i < offset; i++ {
		if s.Runes[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

// LineStart returns the offset of the first rune of the line holding offset.
func (s Snapshot) LineStart(offset int) int {
	offset = clamp(offset, 0, len(s.Runes))
	for offset > 0 && s.Runes[offset-1] != '\n' {
		offset--
	}
	return offset
}

// LineEnd returns the offset of the newline ending the line holding offset,
// or the text length on the last line.
func (s Snapshot) LineEnd(offset int) int {
	offset = clamp(offset, 0, len(s.Runes))
	for offset < len(s.Runes) && s.Runes[offset] != '\n' {
		offset++
	}
	return offset
}
