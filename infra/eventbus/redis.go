package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/domain/events"
	"github.com/amirasaad/transfers/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes events on Redis Streams, one stream per event type,
// and consumes them through a consumer group. Messages whose handlers fail are
// copied to a dead letter stream before being acknowledged.
type RedisEventBus struct {
	client *redis.Client
	stream string
	group  string
	logger *slog.Logger

	mu        sync.RWMutex
	handlers  map[events.EventType][]eventbus.HandlerFunc
	consumers map[events.EventType]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis connects to cfg.URL and returns a bus using cfg.Stream as the
// stream name prefix.
func NewWithRedis(cfg *config.Redis, logger *slog.Logger) (*RedisEventBus, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("redis event bus: url is required")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(opt)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:    client,
		stream:    cfg.Stream,
		group:     cfg.Group,
		logger:    logger.With("bus", "redis"),
		handlers:  make(map[events.EventType][]eventbus.HandlerFunc),
		consumers: make(map[events.EventType]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	bus.logger.Info("🚀 Redis event bus initialized", "stream", cfg.Stream, "group", cfg.Group)
	return bus, nil
}

// Emit appends the event to the stream of its type.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encode(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	stream := b.streamFor(events.EventType(event.Type()))
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": string(raw)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type(), "stream", stream)
	return nil
}

// Register adds handler for eventType and starts the type's consumer on first use.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	_, running := b.consumers[eventType]
	b.consumers[eventType] = struct{}{}
	b.mu.Unlock()
	if running {
		return
	}

	stream := b.streamFor(eventType)
	err := b.client.XGroupCreateMkStream(b.ctx, stream, b.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "error", err, "stream", stream)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, stream)
	}()
}

// Close stops the consumers and the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

func (b *RedisEventBus) consume(eventType events.EventType, stream string) {
	consumer := fmt.Sprintf("%s-%d", strings.ToLower(eventType.String()), os.Getpid())
	for {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()
		if b.ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "stream", stream)
				time.Sleep(500 * time.Millisecond)
			}
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handle(eventType, stream, msg)
			}
		}
	}
}

func (b *RedisEventBus) handle(eventType events.EventType, stream string, msg redis.XMessage) {
	raw, _ := msg.Values["event"].(string)
	evt, err := decode([]byte(raw))
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "msg_id", msg.ID)
		b.pushToDLQ(eventType, msg.Values)
	} else {
		b.mu.RLock()
		handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
		b.mu.RUnlock()
		if !dispatch(b.ctx, b.logger, evt, handlers, msg.ID) {
			b.pushToDLQ(eventType, msg.Values)
		}
	}
	if err := b.client.XAck(b.ctx, stream, b.group, msg.ID).Err(); err != nil {
		b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
	}
}

func (b *RedisEventBus) pushToDLQ(eventType events.EventType, values map[string]any) {
	dlq := b.dlqFor(eventType)
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

func (b *RedisEventBus) streamFor(eventType events.EventType) string {
	return fmt.Sprintf("%s:%s", b.stream, strings.ToLower(eventType.String()))
}

func (b *RedisEventBus) dlqFor(eventType events.EventType) string {
	return fmt.Sprintf("%s:dlq:%s", b.stream, strings.ToLower(eventType.String()))
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
