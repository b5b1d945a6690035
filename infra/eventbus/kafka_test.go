//go:build integration

package eventbus

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/domain/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafkaBus(tb testing.TB) *KafkaEventBus {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(tb, err)

	bus, err := NewWithKafka(&config.Kafka{
		Brokers:     strings.Join(brokers, ","),
		TopicPrefix: "transfers.audit",
		GroupID:     "transfers-audit",
	}, nil)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestKafkaBusHandlerReceivesEvent(t *testing.T) {
	bus := setupKafkaBus(t)
	received := make(chan *events.TransferCreated, 1)
	bus.Register(events.EventTypeTransferCreated, func(ctx context.Context, e events.Event) error {
		received <- e.(*events.TransferCreated)
		return nil
	})

	sent := sampleCreated()
	require.NoError(t, bus.Emit(context.Background(), sent))

	select {
	case got := <-received:
		require.Equal(t, sent.TransferID, got.TransferID)
	case <-time.After(15 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestKafkaBusDLQ(t *testing.T) {
	bus := setupKafkaBus(t)
	bus.Register(events.EventTypeTransferCreated, func(ctx context.Context, e events.Event) error {
		return errors.New("simulated failure")
	})
	require.NoError(t, bus.Emit(context.Background(), sampleCreated()))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     bus.brokers,
		Topic:       bus.dlqTopicFor(events.EventTypeTransferCreated),
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = reader.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	msg, err := reader.FetchMessage(ctx)
	require.NoError(t, err)
	evt, err := decode(msg.Value)
	require.NoError(t, err)
	require.Equal(t, events.EventTypeTransferCreated.String(), evt.Type())
}
