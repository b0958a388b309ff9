package worker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"fitpulse/internal/cache"
	"fitpulse/internal/queue"
	"fitpulse/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockPopularityCache keeps counters in maps.
type MockPopularityCache struct {
	mu       sync.Mutex
	counters map[string]map[string]int64
	incrErr  error
}

func NewMockPopularityCache() *MockPopularityCache {
	return &MockPopularityCache{counters: make(map[string]map[string]int64)}
}

func (m *MockPopularityCache) Incr(ctx context.Context, metric, recipeID string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return m.incrErr
	}
	if m.counters[metric] == nil {
		m.counters[metric] = make(map[string]int64)
	}
	m.counters[metric][recipeID] += delta
	if m.counters[metric][recipeID] <= 0 {
		delete(m.counters[metric], recipeID)
	}
	return nil
}

func (m *MockPopularityCache) Top(ctx context.Context, metric string, limit int) ([]cache.RecipeScore, error) {
	return nil, nil
}

func (m *MockPopularityCache) Count(ctx context.Context, metric, recipeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[metric][recipeID], nil
}

// MockConsumer serves messages pushed to it and records acks.
type MockConsumer struct {
	messages chan queue.Message
	pending  []queue.Message

	mu    sync.Mutex
	acked []string
}

func NewMockConsumer() *MockConsumer {
	return &MockConsumer{messages: make(chan queue.Message, 16)}
}

func (m *MockConsumer) EnsureGroup(ctx context.Context, stream, group string) error { return nil }

func (m *MockConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	select {
	case msg := <-m.messages:
		return []queue.Message{msg}, nil
	case <-ctx.Done():
		return nil, nil
	case <-time.After(block):
		return nil, nil
	}
}

func (m *MockConsumer) Ack(ctx context.Context, stream, group string, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, ids...)
	return nil
}

func (m *MockConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	return int64(len(m.pending)), nil
}

func (m *MockConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]queue.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out, nil
}

func (m *MockConsumer) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.acked...)
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestHandler_CountsFavoritesAndViews(t *testing.T) {
	ctx := context.Background()
	popularity := NewMockPopularityCache()
	handler := worker.NewHandler(popularity)

	events := []queue.PrefEvent{
		queue.NewFavoriteToggledEvent("d1", "4", true),
		queue.NewFavoriteToggledEvent("d2", "4", true),
		queue.NewFavoriteToggledEvent("d1", "4", false),
		queue.NewRecipeViewedEvent("d1", "4"),
		queue.NewRecipeViewedEvent("d1", "2"),
		queue.NewRecipeViewedEvent("d2", "2"),
	}
	for _, e := range events {
		if err := handler.HandleEvent(ctx, e); err != nil {
			t.Fatalf("HandleEvent(%s) failed: %v", e.Type, err)
		}
	}

	if got, _ := popularity.Count(ctx, cache.MetricFavorites, "4"); got != 1 {
		t.Errorf("favorites of 4 = %d, want 1", got)
	}
	if got, _ := popularity.Count(ctx, cache.MetricViews, "2"); got != 2 {
		t.Errorf("views of 2 = %d, want 2", got)
	}
}

func TestHandler_RejectsUnknownOrIncompleteEvents(t *testing.T) {
	handler := worker.NewHandler(NewMockPopularityCache())

	if err := handler.HandleEvent(context.Background(), queue.PrefEvent{Type: "post_created", RecipeID: "1"}); err == nil {
		t.Error("expected error for unknown event type")
	}
	if err := handler.HandleEvent(context.Background(), queue.PrefEvent{Type: queue.EventRecipeViewed}); err == nil {
		t.Error("expected error for missing recipe id")
	}
}

func TestHandler_PropagatesCacheError(t *testing.T) {
	popularity := NewMockPopularityCache()
	popularity.incrErr = errors.New("redis down")
	handler := worker.NewHandler(popularity)

	err := handler.HandleEvent(context.Background(), queue.NewRecipeViewedEvent("d1", "1"))
	if !errors.Is(err, popularity.incrErr) {
		t.Errorf("error = %v, want %v", err, popularity.incrErr)
	}
}

// =============================================================================
// Manager Tests
// =============================================================================

func TestManager_ProcessesPendingThenNewMessages(t *testing.T) {
	popularity := NewMockPopularityCache()
	consumer := NewMockConsumer()
	consumer.pending = []queue.Message{
		{ID: "1-0", Event: queue.NewRecipeViewedEvent("d1", "3")},
	}

	m := worker.NewManager(consumer, worker.NewHandler(popularity), worker.ManagerConfig{
		WorkerCount:  1,
		BlockTimeout: 20 * time.Millisecond,
	})
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	consumer.messages <- queue.Message{ID: "2-0", Event: queue.NewFavoriteToggledEvent("d1", "3", true)}
	// A failing event is still acknowledged
	consumer.messages <- queue.Message{ID: "3-0", Event: queue.PrefEvent{Type: "bogus", RecipeID: "3"}}
	// So is a malformed entry
	consumer.messages <- queue.Message{ID: "4-0", Err: errors.New("missing event type")}

	deadline := time.Now().Add(2 * time.Second)
	for len(consumer.Acked()) < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()

	if acked := consumer.Acked(); len(acked) != 4 {
		t.Fatalf("acked = %v, want 4 messages", acked)
	}
	if got, _ := popularity.Count(context.Background(), cache.MetricViews, "3"); got != 1 {
		t.Errorf("views of 3 = %d, want 1", got)
	}
	if got, _ := popularity.Count(context.Background(), cache.MetricFavorites, "3"); got != 1 {
		t.Errorf("favorites of 3 = %d, want 1", got)
	}
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := worker.NewManager(NewMockConsumer(), worker.NewHandler(NewMockPopularityCache()), worker.DefaultManagerConfig())
	m.Stop() // must not panic
}

// =============================================================================
// Redis Integration Tests
// =============================================================================

func TestPopularityCache_Redis(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	popularity := cache.NewPopularityCache(client)

	for _, id := range []string{"1", "2", "2", "3", "3", "3"} {
		if err := popularity.Incr(ctx, cache.MetricViews, id, 1); err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
	}

	top, err := popularity.Top(ctx, cache.MetricViews, 2)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(top) != 2 || top[0].RecipeID != "3" || top[0].Count != 3 || top[1].RecipeID != "2" {
		t.Errorf("top = %+v, want [3:3 2:2]", top)
	}

	// Dropping to zero removes the member
	if err := popularity.Incr(ctx, cache.MetricViews, "1", -1); err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	if n, _ := popularity.Count(ctx, cache.MetricViews, "1"); n != 0 {
		t.Errorf("count of 1 = %d, want 0", n)
	}
	if size := client.ZCard(ctx, cache.PopularityKeyPrefix+cache.MetricViews).Val(); size != 2 {
		t.Errorf("set size = %d, want 2", size)
	}
}

// TestStreamToWorkerIntegration tests the complete flow:
// Publisher -> Stream -> Consumer -> Handler -> Cache
func TestStreamToWorkerIntegration(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()

	popularity := cache.NewPopularityCache(client)
	publisher := queue.NewPublisher(client)
	consumer := queue.NewConsumer(client)
	handler := worker.NewHandler(popularity)

	if err := consumer.EnsureGroup(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}
	// Second call hits BUSYGROUP and must succeed
	if err := consumer.EnsureGroup(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences); err != nil {
		t.Fatalf("EnsureGroup (existing) failed: %v", err)
	}

	if _, err := publisher.Publish(ctx, queue.StreamPreferences, queue.NewFavoriteToggledEvent("d1", "5", true)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	messages, err := consumer.Read(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences, "test-worker", 10, time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}

	msg := messages[0]
	if msg.Err != nil {
		t.Fatalf("parse failed: %v", msg.Err)
	}
	if msg.Event.DeviceID != "d1" || msg.Event.RecipeID != "5" {
		t.Errorf("event = %+v", msg.Event)
	}
	if err := handler.HandleEvent(ctx, msg.Event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if err := consumer.Ack(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences, msg.ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	if n, _ := popularity.Count(ctx, cache.MetricFavorites, "5"); n != 1 {
		t.Errorf("favorites of 5 = %d, want 1", n)
	}

	pending, _ := consumer.Pending(ctx, queue.StreamPreferences, queue.ConsumerGroupPreferences)
	if pending != 0 {
		t.Errorf("Expected 0 pending messages, got %d", pending)
	}
}
