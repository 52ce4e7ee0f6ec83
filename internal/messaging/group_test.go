package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/dynamic-qr/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRunnable struct {
	started     bool
	shutdown    bool
	startErr    error
	shutdownErr error
}

func (m *mockRunnable) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockRunnable) Shutdown() error {
	m.shutdown = true

	return m.shutdownErr
}

func TestConsumerGroup_Start(t *testing.T) {
	t.Run("starts all consumers", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		first, second := &mockRunnable{}, &mockRunnable{}
		group.Add(first, second)

		require.NoError(t, group.Start(context.Background()))

		assert.True(t, first.started)
		assert.True(t, second.started)
	})

	t.Run("stops started consumers when one fails", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		first := &mockRunnable{}
		second := &mockRunnable{startErr: errors.New("start error")}
		third := &mockRunnable{}
		group.Add(first, second, third)

		err := group.Start(context.Background())

		require.ErrorContains(t, err, "start consumer 1")
		assert.True(t, first.shutdown)
		assert.False(t, third.started)
	})
}

func TestConsumerGroup_Shutdown(t *testing.T) {
	t.Run("stops consumers and closes the subscriber", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		consumer := &mockRunnable{}
		group.Add(consumer)

		require.NoError(t, group.Shutdown())

		assert.True(t, consumer.shutdown)
		assert.True(t, sub.closed)
	})

	t.Run("joins errors but stops everything", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		first := &mockRunnable{shutdownErr: errors.New("shutdown error 1")}
		second := &mockRunnable{shutdownErr: errors.New("shutdown error 2")}
		group.Add(first, second)

		err := group.Shutdown()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "shutdown error 1")
		assert.Contains(t, err.Error(), "shutdown error 2")
		assert.True(t, second.shutdown)
	})
}
