package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/serroba/dynamic-qr/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishFunc_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := messaging.NewInMemoryPubSub(messaging.NewZapLoggerAdapter(zap.NewNop()))
	group := messaging.NewPublisherGroup(pubSub)

	msgs, err := pubSub.Subscribe(ctx, "link.updated")
	require.NoError(t, err)

	publish := messaging.NewPublishFunc[testEvent](group.Publisher(), "link.updated")

	require.NoError(t, publish(ctx, &testEvent{Code: "abcd1234", URL: "https://new.example"}))

	select {
	case msg := <-msgs:
		var got testEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, testEvent{Code: "abcd1234", URL: "https://new.example"}, got)
		assert.NotEmpty(t, msg.UUID)

		publishedAt, err := time.Parse(time.RFC3339Nano, msg.Metadata.Get(messaging.MetadataPublishedAt))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), publishedAt, time.Minute)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	assert.NoError(t, group.Shutdown())
}

func TestConsumer_WithInMemoryPubSub(t *testing.T) {
	ctx := context.Background()
	pubSub := messaging.NewInMemoryPubSub(messaging.NewZapLoggerAdapter(zap.NewNop()))

	received := make(chan *testEvent, 1)
	consumer := messaging.NewConsumer(pubSub, "link.resolved",
		func(_ context.Context, event *testEvent) error {
			received <- event

			return nil
		},
		zap.NewNop(),
	)

	group := messaging.NewConsumerGroup(pubSub, zap.NewNop())
	group.Add(consumer)
	require.NoError(t, group.Start(ctx))

	publish := messaging.NewPublishFunc[testEvent](pubSub, "link.resolved")
	require.NoError(t, publish(ctx, &testEvent{Code: "abcd1234"}))

	select {
	case event := <-received:
		assert.Equal(t, "abcd1234", event.Code)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	assert.NoError(t, group.Shutdown())
}
