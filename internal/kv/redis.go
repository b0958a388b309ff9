package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces state records inside a shared Redis database.
const RedisKeyPrefix = "state:"

// redisStorage implements Storage with plain Redis string keys.
type redisStorage struct {
	client *redis.Client
}

// NewRedisStorage creates a Storage backed by Redis.
func NewRedisStorage(client *redis.Client) Storage {
	return &redisStorage{client: client}
}

func redisKey(key string) string {
	return RedisKeyPrefix + key
}

func (s *redisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("[KV] Get FAILED: key=%s err=%v", key, err)
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Set stores value without expiry: snapshots live until explicitly reset.
func (s *redisStorage) Set(ctx context.Context, key string, value []byte) error {
	startTime := time.Now()

	if err := s.client.Set(ctx, redisKey(key), value, 0).Err(); err != nil {
		log.Printf("[KV] Set FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("redis set: %w", err)
	}

	log.Printf("[KV] Set OK: key=%s bytes=%d duration=%v", key, len(value), time.Since(startTime))
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		log.Printf("[KV] Delete FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
