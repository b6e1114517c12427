package session

import (
	"context"
	"fmt"

	"github.com/dshills/brackets/internal/event"
)

// Attach subscribes the session to the buffer and cursor topics on bus:
// text inserting clears the highlight, text changed rebuilds the index and
// caret moved highlights. The returned function removes the subscriptions.
func (s *Session) Attach(bus event.Bus) (detach func(), err error) {
	var subs []event.Subscription
	detach = func() {
		for _, sub := range subs {
			_ = bus.Unsubscribe(sub)
		}
		subs = nil
	}

	handlers := []struct {
		topic   event.Topic
		handler event.Handler
	}{
		{event.TopicTextInserting, event.Typed(func(ctx context.Context, ev event.Event[event.TextInserting]) error {
			s.ClearBracket()
			return nil
		})},
		{event.TopicTextChanged, event.Typed(func(ctx context.Context, ev event.Event[event.TextChanged]) error {
			s.OnTextChanged(ev.Payload.Text)
			return nil
		})},
		{event.TopicCaretMoved, event.Typed(func(ctx context.Context, ev event.Event[event.CaretMoved]) error {
			s.OnCaretMoved(ev.Payload.New)
			return nil
		})},
	}

	for _, h := range handlers {
		sub, serr := bus.Subscribe(h.topic, h.handler, event.WithPriority(event.PriorityHigh))
		if serr != nil {
			detach()
			return nil, fmt.Errorf("session: subscribe %s: %w", h.topic, serr)
		}
		subs = append(subs, sub)
	}

	return detach, nil
}
