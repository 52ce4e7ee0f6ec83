package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// MetadataPublishedAt carries the RFC 3339 publish time of a message.
const MetadataPublishedAt = "published_at"

// Publish sends a typed event to its topic.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc creates a typed publish function for topic. Events are JSON
// encoded and each message gets a fresh UUID.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", topic, err)
		}

		msg := message.NewMessage(uuid.NewString(), payload)
		msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))
		msg.SetContext(ctx)

		return publisher.Publish(topic, msg)
	}
}

// PublisherGroup owns the shared publisher and closes it on shutdown.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher returns the shared publisher.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
