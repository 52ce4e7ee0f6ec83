package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a background component with a start/stop lifecycle.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup starts and stops consumers sharing one subscriber.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates a new consumer group.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers consumers with the group.
func (g *ConsumerGroup) Add(consumers ...Runnable) {
	g.consumers = append(g.consumers, consumers...)
}

// Start starts every consumer. If one fails, those already started are stopped.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for _, started := range g.consumers[:i] {
				_ = started.Shutdown()
			}

			return fmt.Errorf("start consumer %d: %w", i, err)
		}
	}

	g.logger.Info("consumer group started", zap.Int("consumers", len(g.consumers)))

	return nil
}

// Shutdown stops all consumers, then closes the subscriber. Every step runs
// even if an earlier one fails.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	errs := make([]error, 0, len(g.consumers)+1)
	for _, consumer := range g.consumers {
		errs = append(errs, consumer.Shutdown())
	}

	errs = append(errs, g.subscriber.Close())

	return errors.Join(errs...)
}
