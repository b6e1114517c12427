package buffer

import "github.com/dshills/brackets/internal/event"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithBus sets the bus edits and caret moves are published on.
func WithBus(bus event.Bus) Option {
	return func(b *Buffer) {
		b.bus = bus
	}
}

// WithSource sets the source name stamped on published events.
func WithSource(source string) Option {
	return func(b *Buffer) {
		if source != "" {
			b.source = source
		}
	}
}
