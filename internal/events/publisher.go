package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/dynamic-qr/internal/messaging"
)

// Publisher emits link lifecycle events.
type Publisher interface {
	LinkCreated(ctx context.Context, event *LinkCreated) error
	LinkUpdated(ctx context.Context, event *LinkUpdated) error
	LinkResolved(ctx context.Context, event *LinkResolved) error
}

// BrokerPublisher publishes JSON events through a watermill publisher.
type BrokerPublisher struct {
	created  messaging.Publish[LinkCreated]
	updated  messaging.Publish[LinkUpdated]
	resolved messaging.Publish[LinkResolved]
}

// NewBrokerPublisher binds each event type to its topic on publisher.
func NewBrokerPublisher(publisher message.Publisher) *BrokerPublisher {
	return &BrokerPublisher{
		created:  messaging.NewPublishFunc[LinkCreated](publisher, TopicLinkCreated),
		updated:  messaging.NewPublishFunc[LinkUpdated](publisher, TopicLinkUpdated),
		resolved: messaging.NewPublishFunc[LinkResolved](publisher, TopicLinkResolved),
	}
}

func (p *BrokerPublisher) LinkCreated(ctx context.Context, event *LinkCreated) error {
	return p.created(ctx, event)
}

func (p *BrokerPublisher) LinkUpdated(ctx context.Context, event *LinkUpdated) error {
	return p.updated(ctx, event)
}

func (p *BrokerPublisher) LinkResolved(ctx context.Context, event *LinkResolved) error {
	return p.resolved(ctx, event)
}

// NopPublisher discards events. Used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) LinkCreated(context.Context, *LinkCreated) error { return nil }

func (NopPublisher) LinkUpdated(context.Context, *LinkUpdated) error { return nil }

func (NopPublisher) LinkResolved(context.Context, *LinkResolved) error { return nil }

// Compile-time checks.
var (
	_ Publisher = (*BrokerPublisher)(nil)
	_ Publisher = NopPublisher{}
)
