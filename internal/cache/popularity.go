package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Popularity metrics, each one Redis sorted set keyed by recipe id.
const (
	MetricFavorites = "favorites"
	MetricViews     = "views"
)

// PopularityKeyPrefix is the key prefix of the popularity sorted sets
const PopularityKeyPrefix = "popularity:"

// RecipeScore is a recipe id with its counter value.
type RecipeScore struct {
	RecipeID string
	Count    int64
}

// PopularityCache defines the counters behind the popular recipes endpoint.
type PopularityCache interface {
	// Incr adds delta to the recipe's counter for metric. Counters that drop to
	// zero or below are removed.
	Incr(ctx context.Context, metric, recipeID string, delta int64) error

	// Top returns the highest counters of metric, highest first.
	Top(ctx context.Context, metric string, limit int) ([]RecipeScore, error)

	// Count returns one recipe's counter; absent recipes count zero.
	Count(ctx context.Context, metric, recipeID string) (int64, error)
}

// RedisPopularityCache implements PopularityCache using Redis Sorted Sets.
type RedisPopularityCache struct {
	client *redis.Client
}

// NewPopularityCache creates a new PopularityCache backed by Redis.
func NewPopularityCache(client *redis.Client) PopularityCache {
	return &RedisPopularityCache{client: client}
}

func popularityKey(metric string) string {
	return PopularityKeyPrefix + metric
}

// Incr uses a pipeline: ZINCRBY + ZREMRANGEBYSCORE (drop non-positive counters).
func (c *RedisPopularityCache) Incr(ctx context.Context, metric, recipeID string, delta int64) error {
	key := popularityKey(metric)
	startTime := time.Now()

	pipe := c.client.Pipeline()
	pipe.ZIncrBy(ctx, key, float64(delta), recipeID)
	pipe.ZRemRangeByScore(ctx, key, "-inf", "0")

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[PopularityCache] Incr FAILED: metric=%s recipe=%s delta=%d err=%v", metric, recipeID, delta, err)
		return fmt.Errorf("increment %s: %w", metric, err)
	}

	log.Printf("[PopularityCache] Incr OK: metric=%s recipe=%s delta=%d duration=%v",
		metric, recipeID, delta, time.Since(startTime))
	return nil
}

// Top reads the highest scores with ZREVRANGE WITHSCORES.
func (c *RedisPopularityCache) Top(ctx context.Context, metric string, limit int) ([]RecipeScore, error) {
	if limit <= 0 {
		return []RecipeScore{}, nil
	}
	key := popularityKey(metric)

	results, err := c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		log.Printf("[PopularityCache] Top FAILED: metric=%s err=%v", metric, err)
		return nil, fmt.Errorf("top %s: %w", metric, err)
	}

	out := make([]RecipeScore, 0, len(results))
	for _, z := range results {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, RecipeScore{RecipeID: id, Count: int64(z.Score)})
	}
	return out, nil
}

func (c *RedisPopularityCache) Count(ctx context.Context, metric, recipeID string) (int64, error) {
	score, err := c.client.ZScore(ctx, popularityKey(metric), recipeID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		log.Printf("[PopularityCache] Count FAILED: metric=%s recipe=%s err=%v", metric, recipeID, err)
		return 0, fmt.Errorf("count %s: %w", metric, err)
	}
	return int64(score), nil
}
