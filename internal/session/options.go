package session

import (
	"github.com/dshills/brackets/internal/bracket"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/style"
)

// Option configures a Session.
type Option func(*Session)

// WithKind sets the bracket characters to match.
func WithKind(kind bracket.Kind) Option {
	return func(s *Session) {
		if kind.Validate() == nil {
			s.kind = kind
		}
	}
}

// WithPalette sets the base and matched tags.
func WithPalette(p style.Palette) Option {
	return func(s *Session) {
		if p.Base != "" && p.Matched != "" {
			s.palette = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}
