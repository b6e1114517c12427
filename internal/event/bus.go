package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// Bus is the event bus interface.
type Bus interface {
	// Publish delivers event to every matching handler before returning.
	Publish(ctx context.Context, event any) error

	// Subscribe registers handler for topics matching topicPattern.
	Subscribe(topicPattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)

	// SubscribeFunc is Subscribe for a plain function.
	SubscribeFunc(topicPattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(sub Subscription) error

	// Stats returns delivery counters.
	Stats() Stats
}

// Stats contains bus delivery counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// ErrorHandler receives handler failures. err is a *HandlerError or a
// *PanicError.
type ErrorHandler func(err error)

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	errorHandler ErrorHandler
}

// WithErrorHandler sets the callback for failed or panicking handlers.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(c *busConfig) {
		c.errorHandler = h
	}
}

type bus struct {
	registry *registry
	config   busConfig

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new synchronous event bus.
func NewBus(opts ...BusOption) Bus {
	var config busConfig
	for _, opt := range opts {
		opt(&config)
	}
	return &bus{
		registry: newRegistry(),
		config:   config,
	}
}

// Publish runs every matching handler in the caller's goroutine.
// Handler errors and panics are counted and forwarded to the error handler;
// they are not returned.
func (b *bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()
	if err := eventTopic.Validate(); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, eventTopic)
	}

	b.eventsPublished.Add(1)

	for _, sub := range b.registry.match(eventTopic) {
		// An earlier handler may have unsubscribed this one.
		if !sub.IsActive() {
			continue
		}
		if err := b.deliver(ctx, sub, eventTopic, event); err != nil {
			b.report(err)
			continue
		}
		b.eventsDelivered.Add(1)
	}

	return nil
}

func (b *bus) deliver(ctx context.Context, sub *subscription, t Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{
				SubscriptionID: sub.id,
				Topic:          t,
				Value:          r,
				Stack:          string(debug.Stack()),
			}
		}
	}()

	if herr := sub.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: t, Err: herr}
	}
	return nil
}

func (b *bus) report(err error) {
	if b.config.errorHandler != nil {
		b.config.errorHandler(err)
	}
}

// Subscribe creates a new subscription for the given topic pattern.
func (b *bus) Subscribe(topicPattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if err := topicPattern.Validate(); err != nil {
		return nil, err
	}

	sub := newSubscription(generateID(), topicPattern, handler, b.registry.nextSeq(), opts...)
	b.registry.add(sub)
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(topicPattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(topicPattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.registry.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.countActive(),
	}
}
