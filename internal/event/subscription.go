package event

import "sync/atomic"

// Priority determines handler execution order.
// Lower values execute first.
type Priority int

const (
	// PriorityCritical is for core state handlers that must run first.
	PriorityCritical Priority = 0

	// PriorityHigh is for handlers that decorate state.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for logging handlers that run last.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Subscription represents an event subscription.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() Topic

	// IsActive returns true if the subscription can receive events.
	IsActive() bool

	// Cancel permanently cancels the subscription.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

const (
	stateActive int32 = iota
	stateCancelled
)

type subscription struct {
	id      string
	topic   Topic
	handler Handler
	config  SubscriptionConfig
	seq     uint64
	state   atomic.Int32
}

func newSubscription(id string, t Topic, h Handler, seq uint64, opts ...SubscriptionOption) *subscription {
	config := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&config)
	}
	return &subscription{
		id:      id,
		topic:   t,
		handler: h,
		config:  config,
		seq:     seq,
	}
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Topic() Topic {
	return s.topic
}

func (s *subscription) IsActive() bool {
	return s.state.Load() == stateActive
}

func (s *subscription) Cancel() {
	s.state.Store(stateCancelled)
}
