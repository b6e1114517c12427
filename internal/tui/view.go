// Package tui is the terminal front end. It draws a buffer snapshot with its
// bracket decorations and feeds key presses back into the editing layer.
package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/brackets/internal/engine/buffer"
	"github.com/dshills/brackets/internal/logging"
)

// Document is the buffer surface the view draws and moves the caret in.
type Document interface {
	Snapshot() buffer.Snapshot
	MoveTo(offset int) error
}

// Editor applies text-changing keys.
type Editor interface {
	KeyTyped(r rune) error
	Backspace() error
	DeleteForward() error
}

// Option configures a View.
type Option func(*View)

// WithTheme sets the theme.
func WithTheme(t Theme) Option {
	return func(v *View) {
		v.theme = t
	}
}

// WithStatus sets a function whose result is appended to the status line.
func WithStatus(fn func() string) Option {
	return func(v *View) {
		v.status = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.log = l
		}
	}
}

// View renders a Document on a tcell screen.
type View struct {
	screen tcell.Screen
	doc    Document
	keys   Editor
	theme  Theme
	status func() string
	log    *logging.Logger

	// top is the first visible line.
	top int
}

// New creates a view. The screen must already be initialized.
func New(screen tcell.Screen, doc Document, keys Editor, opts ...Option) *View {
	v := &View{
		screen: screen,
		doc:    doc,
		keys:   keys,
		theme:  Theme{Default: tcell.StyleDefault, Status: tcell.StyleDefault.Reverse(true)},
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = v.log.WithComponent("tui")
	return v
}

// Run draws and handles events until the user quits or ctx is done.
func (v *View) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		if v.HandleEvent(ev) {
			return nil
		}
		v.Draw()
	}
}

// Refresh asks a running view to redraw. It is safe to call from any
// goroutine.
func (v *View) Refresh() {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// HandleEvent applies one event and reports whether the user asked to quit.
// Editing errors are logged and answered with a beep.
func (v *View) HandleEvent(ev tcell.Event) (quit bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		stop, err := v.handleKey(e)
		if err != nil {
			v.log.Warn("key %s: %v", e.Name(), err)
			_ = v.screen.Beep()
		}
		return stop

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

func (v *View) handleKey(e *tcell.EventKey) (bool, error) {
	switch e.Key() {
	case tcell.KeyCtrlQ, tcell.KeyEscape:
		return true, nil
	case tcell.KeyRune:
		return false, v.keys.KeyTyped(e.Rune())
	case tcell.KeyEnter:
		return false, v.keys.KeyTyped('\n')
	case tcell.KeyTab:
		return false, v.keys.KeyTyped('\t')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return false, v.keys.Backspace()
	case tcell.KeyDelete:
		return false, v.keys.DeleteForward()
	case tcell.KeyLeft:
		snap := v.doc.Snapshot()
		return false, v.move(snap, snap.Caret-1)
	case tcell.KeyRight:
		snap := v.doc.Snapshot()
		return false, v.move(snap, snap.Caret+1)
	case tcell.KeyUp:
		return false, v.vertical(-1)
	case tcell.KeyDown:
		return false, v.vertical(1)
	case tcell.KeyHome:
		snap := v.doc.Snapshot()
		return false, v.move(snap, snap.LineStart(snap.Caret))
	case tcell.KeyEnd:
		snap := v.doc.Snapshot()
		return false, v.move(snap, snap.LineEnd(snap.Caret))
	}
	return false, nil
}

// move places the caret at offset clamped to the text.
func (v *View) move(snap buffer.Snapshot, offset int) error {
	offset = max(0, min(offset, len(snap.Runes)))
	if offset == snap.Caret {
		return nil
	}
	return v.doc.MoveTo(offset)
}

// vertical moves the caret one line up (dir < 0) or down, keeping its rune
// column where the target line is long enough.
func (v *View) vertical(dir int) error {
	snap := v.doc.Snapshot()
	_, col := snap.LineCol(snap.Caret)

	if dir < 0 {
		start := snap.LineStart(snap.Caret)
		if start == 0 {
			return nil
		}
		prevEnd := start - 1
		prevStart := snap.LineStart(prevEnd)
		return v.move(snap, min(prevStart+col, prevEnd))
	}

	end := snap.LineEnd(snap.Caret)
	if end >= len(snap.Runes) {
		return nil
	}
	nextStart := end + 1
	nextEnd := snap.LineEnd(nextStart)
	return v.move(snap, min(nextStart+col, nextEnd))
}

// Draw renders the current snapshot and the status line.
func (v *View) Draw() {
	snap := v.doc.Snapshot()
	width, height := v.screen.Size()
	rows := height - 1
	if rows < 1 {
		rows = height
	}

	caretLine, caretCol := snap.LineCol(snap.Caret)
	if caretLine < v.top {
		v.top = caretLine
	}
	if caretLine >= v.top+rows {
		v.top = caretLine - rows + 1
	}

	tab := max(snap.TabWidth, 1)
	v.screen.Clear()

	line, x := 0, 0
	caretX, caretY := -1, -1
	for i := 0; i <= len(snap.Runes); i++ {
		if i == snap.Caret {
			caretX, caretY = x, line-v.top
		}
		if i == len(snap.Runes) {
			break
		}

		r := snap.Runes[i]
		if r == '\n' {
			line++
			x = 0
			continue
		}

		row := line - v.top
		visible := row >= 0 && row < rows
		st := v.theme.Default
		if i < len(snap.Styles) {
			st = v.theme.Resolve(snap.Styles[i])
		}

		if r == '\t' {
			n := tab - x%tab
			if visible {
				for k := 0; k < n && x+k < width; k++ {
					v.screen.SetContent(x+k, row, ' ', nil, st)
				}
			}
			x += n
			continue
		}

		w := runeWidth(r)
		if w == 0 {
			continue
		}
		if visible && x+w <= width {
			v.screen.SetContent(x, row, r, nil, st)
		}
		x += w
	}

	if height > rows {
		v.drawStatus(height-1, width, caretLine, caretCol, snap.Revision)
	}

	if caretY >= 0 && caretY < rows && caretX < width {
		v.screen.ShowCursor(caretX, caretY)
	} else {
		v.screen.HideCursor()
	}
	v.screen.Show()
}

func (v *View) drawStatus(row, width, line, col int, rev uint64) {
	text := fmt.Sprintf(" %d:%d  rev %d", line+1, col+1, rev)
	if v.status != nil {
		if s := v.status(); s != "" {
			text += "  " + s
		}
	}

	x := 0
	for _, r := range text {
		w := runeWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		v.screen.SetContent(x, row, r, nil, v.theme.Status)
		x += w
	}
	for ; x < width; x++ {
		v.screen.SetContent(x, row, ' ', nil, v.theme.Status)
	}
}

// runeWidth returns the number of terminal cells r occupies.
func runeWidth(r rune) int {
	return uniseg.StringWidth(string(r))
}
