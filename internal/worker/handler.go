package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"fitpulse/internal/cache"
	"fitpulse/internal/queue"
)

// Handler processes preference events from the queue.
type Handler struct {
	popularity cache.PopularityCache
}

// NewHandler creates a new event handler.
func NewHandler(popularity cache.PopularityCache) *Handler {
	return &Handler{popularity: popularity}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.PrefEvent) error {
	startTime := time.Now()

	if event.RecipeID == "" {
		return fmt.Errorf("event %s without recipe id", event.Type)
	}

	var err error
	switch event.Type {
	case queue.EventRecipeFavorited:
		err = h.popularity.Incr(ctx, cache.MetricFavorites, event.RecipeID, 1)
	case queue.EventRecipeUnfavorited:
		err = h.popularity.Incr(ctx, cache.MetricFavorites, event.RecipeID, -1)
	case queue.EventRecipeViewed:
		err = h.popularity.Incr(ctx, cache.MetricViews, event.RecipeID, 1)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s recipe=%s duration=%v err=%v",
			event.Type, event.RecipeID, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s device=%s recipe=%s duration=%v",
		event.Type, event.DeviceID, event.RecipeID, time.Since(startTime))
	return nil
}
