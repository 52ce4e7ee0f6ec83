package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// NewRedisPublisher publishes to Redis streams.
func NewRedisPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (*redisstream.Publisher, error) {
	return redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
}

// NewRedisSubscriber reads Redis streams as a member of consumerGroup, so
// several consumer processes share the work.
func NewRedisSubscriber(
	client redis.UniversalClient,
	consumerGroup string,
	logger watermill.LoggerAdapter,
) (*redisstream.Subscriber, error) {
	return redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: consumerGroup,
	}, logger)
}

// NewInMemoryPubSub returns an in-process pub/sub, used when no broker is configured.
func NewInMemoryPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)
}
