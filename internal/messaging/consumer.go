package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single decoded event.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer subscribes to one topic and feeds decoded events to a Handler.
// Handler errors nack the message for redelivery; undecodable payloads are
// acked and dropped since they can never succeed.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a new generic consumer for a specific event type.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx is
// cancelled or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		cancel()

		return err
	}

	c.cancel = cancel

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.process(ctx, msg)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	log := c.logger.With(zap.String("messageId", msg.UUID))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error("dropping undecodable event", zap.Error(err))
		msg.Ack()

		return
	}

	if err := c.handler(ctx, &event); err != nil {
		log.Error("failed to handle event", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()
	log.Debug("processed event")
}

// Shutdown stops consuming and waits for the in-flight message to finish.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done

	return nil
}
