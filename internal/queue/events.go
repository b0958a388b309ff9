package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the preference stream
const (
	EventRecipeFavorited   = "recipe_favorited"
	EventRecipeUnfavorited = "recipe_unfavorited"
	EventRecipeViewed      = "recipe_viewed"
)

// Stream names
const (
	StreamPreferences = "stream:preferences"
)

// StreamMaxLen bounds the preference stream; XADD trims older entries.
const StreamMaxLen = 100000

// Consumer group name for preference workers
const (
	ConsumerGroupPreferences = "preference_workers"
)

// PrefEvent is a recipe preference change made on one device.
type PrefEvent struct {
	Type      string `json:"type"`      // EventRecipeFavorited, EventRecipeUnfavorited, EventRecipeViewed
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred
	DeviceID  string `json:"device_id"`
	RecipeID  string `json:"recipe_id"`
}

// NewFavoriteToggledEvent creates the event for a favorite toggle.
// favorited is the state after the toggle.
func NewFavoriteToggledEvent(deviceID, recipeID string, favorited bool) PrefEvent {
	eventType := EventRecipeUnfavorited
	if favorited {
		eventType = EventRecipeFavorited
	}
	return PrefEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		DeviceID:  deviceID,
		RecipeID:  recipeID,
	}
}

// NewRecipeViewedEvent creates the event for a recipe detail view.
func NewRecipeViewedEvent(deviceID, recipeID string) PrefEvent {
	return PrefEvent{
		Type:      EventRecipeViewed,
		Timestamp: time.Now().Unix(),
		DeviceID:  deviceID,
		RecipeID:  recipeID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e PrefEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParsePrefEvent parses a PrefEvent from Redis stream message values.
func ParsePrefEvent(values map[string]interface{}) (PrefEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return PrefEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event PrefEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return PrefEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
