package buffer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/brackets/internal/event"
	"github.com/dshills/brackets/internal/style"
)

// recorder collects the topics published on a bus in delivery order.
type recorder struct {
	topics   []event.Topic
	texts    []string
	caretNew []int
}

func newRecorder(t *testing.T, bus event.Bus) *recorder {
	t.Helper()
	r := &recorder{}
	_, err := bus.SubscribeFunc("**", func(ctx context.Context, ev any) error {
		tp := ev.(event.TopicProvider).EventTopic()
		r.topics = append(r.topics, tp)
		switch e := ev.(type) {
		case event.Event[event.TextChanged]:
			r.texts = append(r.texts, e.Payload.Text)
		case event.Event[event.CaretMoved]:
			r.caretNew = append(r.caretNew, e.Payload.New)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	return r
}

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()
	if b.Length() != 0 || b.String() != "" {
		t.Errorf("new buffer should be empty, got %q", b.String())
	}
	if b.CaretPosition() != 0 {
		t.Errorf("caret = %d, want 0", b.CaretPosition())
	}
}

func TestNewBufferFromString(t *testing.T) {
	b := NewBufferFromString("héllo\r\nworld")
	if b.String() != "héllo\nworld" {
		t.Errorf("String() = %q", b.String())
	}
	if b.Length() != 11 {
		t.Errorf("Length() = %d, want 11 runes", b.Length())
	}
	if got := b.Text(1, 2); got != "é" {
		t.Errorf("Text(1, 2) = %q", got)
	}
}

func TestNewBufferFromReader(t *testing.T) {
	b, err := NewBufferFromReader(strings.NewReader("[a\r\nb\rc]"))
	if err != nil {
		t.Fatalf("NewBufferFromReader failed: %v", err)
	}
	if b.String() != "[a\nb\nc]" {
		t.Errorf("String() = %q, want line breaks normalised to \\n", b.String())
	}
	if b.Length() != 7 {
		t.Errorf("Length() = %d, want 7", b.Length())
	}
}

func TestBufferRuneAt(t *testing.T) {
	b := NewBufferFromString("[é]")
	tests := []struct {
		offset int
		want   rune
		ok     bool
	}{
		{0, '[', true},
		{1, 'é', true},
		{2, ']', true},
		{3, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := b.RuneAt(tt.offset)
		if got != tt.want || ok != tt.ok {
			t.Errorf("RuneAt(%d) = %q, %v; want %q, %v", tt.offset, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBufferEventsCarrySource(t *testing.T) {
	bus := event.NewBus()
	var sources []string
	_, err := bus.SubscribeFunc("**", func(ctx context.Context, ev any) error {
		switch e := ev.(type) {
		case event.Event[event.TextInserting]:
			sources = append(sources, e.Metadata.Source)
		case event.Event[event.TextChanged]:
			sources = append(sources, e.Metadata.Source)
		case event.Event[event.CaretMoved]:
			sources = append(sources, e.Metadata.Source)
		default:
			t.Errorf("unexpected event type %T", ev)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	b := NewBuffer(WithBus(bus), WithSource("doc"))
	if err := b.Insert(0, "[]", nil); err != nil {
		t.Fatal(err)
	}
	if err := b.MoveTo(1); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(0, 1); err != nil {
		t.Fatal(err)
	}
	b.SetText("x")

	if len(sources) == 0 {
		t.Fatal("no events published")
	}
	for i, s := range sources {
		if s != "doc" {
			t.Errorf("event %d source = %q, want doc", i, s)
		}
	}
}

func TestBufferTextClamps(t *testing.T) {
	b := NewBufferFromString("abc")
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 3, "abc"},
		{-5, 1, "a"},
		{2, 10, "c"},
		{3, 4, ""},
		{2, 1, ""},
	}
	for _, tt := range tests {
		if got := b.Text(tt.from, tt.to); got != tt.want {
			t.Errorf("Text(%d, %d) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBufferInsertPublishesInOrder(t *testing.T) {
	bus := event.NewBus()
	rec := newRecorder(t, bus)
	b := NewBufferFromString("ac", WithBus(bus))
	if err := b.MoveTo(1); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	rec.topics = nil
	rec.caretNew = nil

	if err := b.Insert(1, "b", nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if b.String() != "abc" {
		t.Errorf("String() = %q", b.String())
	}
	if b.CaretPosition() != 2 {
		t.Errorf("caret = %d, want 2", b.CaretPosition())
	}

	want := []event.Topic{event.TopicTextInserting, event.TopicTextChanged, event.TopicCaretMoved}
	if len(rec.topics) != len(want) {
		t.Fatalf("topics = %v, want %v", rec.topics, want)
	}
	for i := range want {
		if rec.topics[i] != want[i] {
			t.Errorf("topics[%d] = %q, want %q", i, rec.topics[i], want[i])
		}
	}
	if rec.texts[len(rec.texts)-1] != "abc" {
		t.Errorf("changed text = %q", rec.texts[len(rec.texts)-1])
	}
	if rec.caretNew[0] != 2 {
		t.Errorf("caret event New = %d", rec.caretNew[0])
	}
}

func TestBufferInsertAfterCaretKeepsCaret(t *testing.T) {
	bus := event.NewBus()
	rec := newRecorder(t, bus)
	b := NewBufferFromString("ab", WithBus(bus))

	if err := b.Insert(1, "x", nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if b.CaretPosition() != 0 {
		t.Errorf("caret = %d, want 0", b.CaretPosition())
	}
	for _, tp := range rec.topics {
		if tp == event.TopicCaretMoved {
			t.Error("caret did not move and should not publish")
		}
	}
}

func TestBufferInsertStyles(t *testing.T) {
	b := NewBufferFromString("[")
	tags := style.NewSet("loop")
	if err := b.Insert(1, "]", tags); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got := b.StyleAt(1); !got.Equal(tags) {
		t.Errorf("StyleAt(1) = %v, want %v", got, tags)
	}
	if got := b.StyleAt(0); len(got) != 0 {
		t.Errorf("StyleAt(0) = %v, want empty", got)
	}
	tags[0] = "mutated"
	if b.StyleAt(1).Has("mutated") {
		t.Error("buffer must not alias caller's tag set")
	}
}

func TestBufferInsertOutOfRange(t *testing.T) {
	b := NewBufferFromString("ab")
	if err := b.Insert(3, "x", nil); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Insert(3) error = %v", err)
	}
	if err := b.Insert(-1, "x", nil); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Insert(-1) error = %v", err)
	}
}

func TestBufferDelete(t *testing.T) {
	tests := []struct {
		name      string
		caret     int
		from, to  int
		wantText  string
		wantCaret int
	}{
		{"caret after range", 5, 1, 3, "aden", 3},
		{"caret inside range", 2, 1, 3, "aden", 1},
		{"caret before range", 0, 1, 3, "aden", 0},
		{"caret at range end", 3, 1, 3, "aden", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString("abcden")
			if err := b.MoveTo(tt.caret); err != nil {
				t.Fatalf("MoveTo failed: %v", err)
			}
			if err := b.Delete(tt.from, tt.to); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if b.String() != tt.wantText {
				t.Errorf("String() = %q, want %q", b.String(), tt.wantText)
			}
			if b.CaretPosition() != tt.wantCaret {
				t.Errorf("caret = %d, want %d", b.CaretPosition(), tt.wantCaret)
			}
		})
	}
}

func TestBufferDeleteInvalid(t *testing.T) {
	b := NewBufferFromString("abc")
	for _, r := range [][2]int{{-1, 1}, {2, 1}, {0, 4}} {
		if err := b.Delete(r[0], r[1]); !errors.Is(err, ErrRangeInvalid) {
			t.Errorf("Delete(%d, %d) error = %v", r[0], r[1], err)
		}
	}
}

func TestBufferSetText(t *testing.T) {
	bus := event.NewBus()
	rec := newRecorder(t, bus)
	b := NewBufferFromString("abcdef", WithBus(bus))
	_ = b.MoveTo(6)
	b.SetStyle(0, 6, style.NewSet("loop"))

	b.SetText("[x]")

	if b.String() != "[x]" {
		t.Errorf("String() = %q", b.String())
	}
	if b.CaretPosition() != 3 {
		t.Errorf("caret = %d, want 3", b.CaretPosition())
	}
	if len(b.StyleAt(0)) != 0 {
		t.Error("SetText should reset styles")
	}
	if rec.texts[len(rec.texts)-1] != "[x]" {
		t.Errorf("last changed text = %q", rec.texts[len(rec.texts)-1])
	}
	if b.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", b.Revision())
	}
}

func TestBufferMoveTo(t *testing.T) {
	bus := event.NewBus()
	rec := newRecorder(t, bus)
	b := NewBufferFromString("abc", WithBus(bus))

	if err := b.MoveTo(4); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("MoveTo(4) error = %v", err)
	}
	_ = b.MoveTo(0)
	_ = b.MoveTo(3)

	if len(rec.caretNew) != 1 || rec.caretNew[0] != 3 {
		t.Errorf("caret events = %v, want [3]", rec.caretNew)
	}
}

func TestBufferSetStyleClamps(t *testing.T) {
	b := NewBufferFromString("ab")
	b.SetStyle(-1, 10, style.NewSet("x"))
	if !b.StyleAt(0).Has("x") || !b.StyleAt(1).Has("x") {
		t.Error("SetStyle should clamp and apply to every character")
	}
	if b.StyleAt(2) != nil {
		t.Error("StyleAt out of range should be nil")
	}
}

func TestBufferHandlersMayReadDuringPublish(t *testing.T) {
	bus := event.NewBus()
	b := NewBufferFromString("[]", WithBus(bus))

	var seen string
	_, _ = bus.SubscribeFunc(event.TopicTextChanged, func(ctx context.Context, ev any) error {
		seen = b.String()
		b.SetStyle(0, 1, style.NewSet("loop"))
		return nil
	})

	if err := b.Insert(1, "x", nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if seen != "[x]" {
		t.Errorf("handler saw %q", seen)
	}
	if !b.StyleAt(0).Has("loop") {
		t.Error("handler SetStyle was lost")
	}
}

func TestSnapshotLineCol(t *testing.T) {
	b := NewBufferFromString("ab\ncd\n\nef")
	snap := b.Snapshot()

	tests := []struct {
		offset          int
		line, col       int
		lineStart, lEnd int
	}{
		{0, 0, 0, 0, 2},
		{2, 0, 2, 0, 2},
		{3, 1, 0, 3, 5},
		{6, 2, 0, 6, 6},
		{9, 3, 2, 7, 9},
	}
	for _, tt := range tests {
		line, col := snap.LineCol(tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
		if got := snap.LineStart(tt.offset); got != tt.lineStart {
			t.Errorf("LineStart(%d) = %d, want %d", tt.offset, got, tt.lineStart)
		}
		if got := snap.LineEnd(tt.offset); got != tt.lEnd {
			t.Errorf("LineEnd(%d) = %d, want %d", tt.offset, got, tt.lEnd)
		}
	}
}
