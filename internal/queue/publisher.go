package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// slowPublish is the XADD latency above which a publish is logged.
const slowPublish = 100 * time.Millisecond

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event PrefEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish appends the event with XADD. The stream is trimmed to about
// StreamMaxLen entries.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event PrefEvent) (string, error) {
	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	start := time.Now()
	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: StreamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}

	if d := time.Since(start); d > slowPublish {
		log.Printf("[Publisher] Slow XADD: stream=%s type=%s duration=%v", stream, event.Type, d)
	}
	return messageID, nil
}

// NopPublisher drops every event. Used when no Redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, stream string, event PrefEvent) (string, error) {
	return "", nil
}
