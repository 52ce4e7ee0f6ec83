package audit

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/dynamic-qr/internal/events"
	"github.com/serroba/dynamic-qr/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers returns one consumer per lifecycle topic, each writing to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, events.TopicLinkCreated, store.RecordCreated, logger),
		messaging.NewConsumer(subscriber, events.TopicLinkUpdated, store.RecordUpdated, logger),
		messaging.NewConsumer(subscriber, events.TopicLinkResolved, store.RecordResolved, logger),
	}
}
