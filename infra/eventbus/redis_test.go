//go:build integration

package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/domain/events"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisBus(tb testing.TB) *RedisEventBus {
	tb.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0.5",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(tb, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(tb, err)

	bus, err := NewWithRedis(&config.Redis{
		URL:    "redis://" + host + ":" + port.Port(),
		Stream: "transfers.audit",
		Group:  "transfers-audit",
	}, nil)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestRedisBusHandlerReceivesEvent(t *testing.T) {
	bus := setupRedisBus(t)
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
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestRedisBusDLQ(t *testing.T) {
	bus := setupRedisBus(t)
	bus.Register(events.EventTypeTransferCreated, func(ctx context.Context, e events.Event) error {
		return errors.New("simulated failure")
	})
	require.NoError(t, bus.Emit(context.Background(), sampleCreated()))

	require.Eventually(t, func() bool {
		res, err := bus.client.XRange(context.Background(), bus.dlqFor(events.EventTypeTransferCreated), "-", "+").Result()
		return err == nil && len(res) == 1
	}, 10*time.Second, 200*time.Millisecond)
}
