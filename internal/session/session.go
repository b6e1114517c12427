package session

import (
	"sync"

	"github.com/dshills/brackets/internal/bracket"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/style"
)

// Session keeps the bracket index of a host buffer and highlights the pair
// at the caret. It is safe for concurrent use.
type Session struct {
	host    Host
	kind    bracket.Kind
	palette style.Palette
	logger  *logging.Logger

	// mu guards index and active together.
	mu     sync.Mutex
	index  *bracket.Index
	active []bracket.Pair
}

// New creates a session for host and indexes the host's current text.
func New(host Host, opts ...Option) *Session {
	s := &Session{
		host:    host,
		kind:    bracket.DefaultKind,
		palette: style.DefaultPalette(),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("session")
	s.index = bracket.Rebuild(host.Text(0, host.Length()), s.kind)
	return s
}

// OnTextChanged clears the active highlight and rebuilds the index from
// newText. The session is idle afterwards.
func (s *Session) OnTextChanged(newText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.index = bracket.Rebuild(newText, s.kind)
	s.logger.Debug("index rebuilt: %d pairs", s.index.Len()/2)
}

// OnCaretMoved clears the active highlight and highlights the pair at
// position, if there is one.
func (s *Session) OnCaretMoved(position int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.highlightLocked(position)
}

// HighlightBracket recomputes the highlight at the host's current caret.
// Call it after an edit that did not move the caret through the normal
// notification path.
func (s *Session) HighlightBracket() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.highlightLocked(s.host.CaretPosition())
}

// ClearBracket removes the active highlight. Calling it with nothing
// highlighted does nothing.
func (s *Session) ClearBracket() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
}

// State returns the current highlight state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.active) > 0 {
		return StateHighlighted
	}
	return StateIdle
}

// Active returns the highlighted pair.
func (s *Session) Active() (bracket.Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.active) == 0 {
		return bracket.Pair{}, false
	}
	return s.active[len(s.active)-1], true
}

// Index returns the current bracket index. The index is immutable; later
// text changes replace it rather than modify it.
func (s *Session) Index() *bracket.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Kind returns the bracket characters being matched.
func (s *Session) Kind() bracket.Kind {
	return s.kind
}

// Palette returns the base and matched tags.
func (s *Session) Palette() style.Palette {
	return s.palette
}

func (s *Session) highlightLocked(position int) {
	// A caret right after a bracket looks up that bracket.
	if r, ok := s.host.RuneAt(position - 1); ok && s.kind.IsBracket(r) {
		position--
	}

	other, ok := s.index.Partner(position)
	if !ok {
		return
	}

	pair := bracket.NewPair(position, other)
	matched := s.palette.MatchedSet()
	s.decorate(pair.Start, matched)
	s.decorate(pair.End, matched)

	// The pair is tracked even if the host text went stale and nothing was
	// decorated, so the next clear still visits both offsets.
	s.active = append(s.active, pair)
	s.logger.Debug("highlighted %s", pair)
}

func (s *Session) clearLocked() {
	if len(s.active) == 0 {
		return
	}
	base := s.palette.BaseSet()
	for _, pair := range s.active {
		s.decorate(pair.Start, base)
		s.decorate(pair.End, base)
	}
	s.active = s.active[:0]
}

// decorate styles the single character at offset if it is in bounds and
// still a bracket.
func (s *Session) decorate(offset int, tags style.Set) {
	if r, ok := s.host.RuneAt(offset); !ok || !s.kind.IsBracket(r) {
		return
	}
	s.host.SetStyle(offset, offset+1, tags)
}
