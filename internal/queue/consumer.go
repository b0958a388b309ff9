package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one entry read from the preference stream. Err is set when the
// entry could not be parsed; such messages still need to be acknowledged so
// they leave the pending list.
type Message struct {
	ID    string
	Event PrefEvent
	Err   error
}

// Consumer reads a stream as a member of a consumer group.
type Consumer interface {
	// EnsureGroup creates the group (and the stream) when missing.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read returns entries never delivered to the group, blocking up to block.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending returns entries delivered to consumer but never acknowledged.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	// Ack removes entries from the group's pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error

	// Pending returns how many entries of the group await acknowledgement.
	Pending(ctx context.Context, stream, group string) (int64, error)
}

// RedisConsumer implements Consumer with XREADGROUP / XACK.
type RedisConsumer struct {
	client *redis.Client
}

func NewConsumer(client *redis.Client) Consumer {
	return &RedisConsumer{client: client}
}

// EnsureGroup starts the group at "0" so a fresh group (for instance after the
// popularity sets were wiped) replays the whole stream.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	switch {
	case err == nil:
		log.Printf("[Consumer] Group created: stream=%s group=%s", stream, group)
		return nil
	case strings.HasPrefix(err.Error(), "BUSYGROUP"):
		return nil
	default:
		log.Printf("[Consumer] EnsureGroup FAILED: stream=%s group=%s err=%v", stream, group, err)
		return fmt.Errorf("create consumer group: %w", err)
	}
}

func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.readGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	})
}

func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	// Without BLOCK, "0" returns this consumer's own pending history.
	return c.readGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	})
}

func (c *RedisConsumer) readGroup(ctx context.Context, args *redis.XReadGroupArgs) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup %s %s: %w", args.Streams[0], args.Streams[1], err)
	}

	var messages []Message
	for _, s := range streams {
		for _, entry := range s.Messages {
			event, err := ParsePrefEvent(entry.Values)
			messages = append(messages, Message{ID: entry.ID, Event: event, Err: err})
		}
	}
	return messages, nil
}

func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

func (c *RedisConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	info, err := c.client.XPending(ctx, stream, group).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending: %w", err)
	}
	return info.Count, nil
}
