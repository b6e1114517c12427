package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/brackets/internal/style"
)

// Theme maps decoration tags to terminal styles.
type Theme struct {
	// Default is used for runes whose tags have no style of their own.
	Default tcell.Style
	// Status is used for the status line.
	Status tcell.Style

	tags map[style.Tag]tcell.Style
}

// NewTheme builds a theme in which palette's matched tag is drawn with the
// given colours. A nil colour keeps the terminal default; when both are nil
// matched brackets are drawn reversed.
func NewTheme(palette style.Palette, fg, bg *colorful.Color) Theme {
	matched := tcell.StyleDefault.Bold(true)
	if fg != nil {
		matched = matched.Foreground(convertColor(*fg))
	}
	if bg != nil {
		matched = matched.Background(convertColor(*bg))
	}
	if fg == nil && bg == nil {
		matched = matched.Reverse(true)
	}

	return Theme{
		Default: tcell.StyleDefault,
		Status:  tcell.StyleDefault.Reverse(true),
		tags: map[style.Tag]tcell.Style{
			palette.Matched: matched,
		},
	}
}

// With returns a copy of t that draws tag with st.
func (t Theme) With(tag style.Tag, st tcell.Style) Theme {
	tags := make(map[style.Tag]tcell.Style, len(t.tags)+1)
	for k, v := range t.tags {
		tags[k] = v
	}
	tags[tag] = st
	t.tags = tags
	return t
}

// Resolve returns the style for a rune decorated with set. The first tag in
// set that has a style wins.
func (t Theme) Resolve(set style.Set) tcell.Style {
	for _, tag := range set {
		if st, ok := t.tags[tag]; ok {
			return st
		}
	}
	return t.Default
}

func convertColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
