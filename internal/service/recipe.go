package service

import (
	"context"
	"log"

	"fitpulse/internal/cache"
	"fitpulse/internal/model"
	"fitpulse/internal/queue"
	"fitpulse/internal/session"
	"fitpulse/internal/store"
)

// Sessions resolves the state of a device.
type Sessions interface {
	Get(ctx context.Context, deviceID string) *session.Session
}

// RecipeService runs the recipe screens' operations against a device's
// recipe store and publishes preference events for the popularity counters.
type RecipeService struct {
	sessions   Sessions
	catalog    store.RecipeSource
	publisher  queue.Publisher
	popularity cache.PopularityCache // nil when Redis is not configured
}

func NewRecipeService(sessions Sessions, catalog store.RecipeSource, publisher queue.Publisher, popularity cache.PopularityCache) *RecipeService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &RecipeService{
		sessions:   sessions,
		catalog:    catalog,
		publisher:  publisher,
		popularity: popularity,
	}
}

// List returns the catalog narrowed by the device's active filters.
func (s *RecipeService) List(ctx context.Context, deviceID string) []model.Recipe {
	return s.recipes(ctx, deviceID).FilteredRecipes()
}

func (s *RecipeService) Filters(ctx context.Context, deviceID string) model.RecipeFilters {
	return s.recipes(ctx, deviceID).Filters()
}

// UpdateFilters applies the non-nil fields of req and returns the result.
func (s *RecipeService) UpdateFilters(ctx context.Context, deviceID string, req model.UpdateFiltersRequest) model.RecipeFilters {
	rs := s.recipes(ctx, deviceID)
	if req.SearchQuery != nil {
		rs.SetSearchQuery(*req.SearchQuery)
	}
	if req.SelectedCategory != nil {
		rs.SetSelectedCategory(*req.SelectedCategory)
	}
	if req.SelectedDietType != nil {
		rs.SetSelectedDietType(*req.SelectedDietType)
	}
	return rs.Filters()
}

// Get returns one recipe by id.
func (s *RecipeService) Get(id string) (model.Recipe, error) {
	r, ok := s.catalog.Recipe(id)
	if !ok {
		return model.Recipe{}, model.ErrRecipeNotFound
	}
	return r, nil
}

func (s *RecipeService) Favorites(ctx context.Context, deviceID string) []model.Recipe {
	return s.recipes(ctx, deviceID).FavoriteRecipes()
}

func (s *RecipeService) RecentlyViewed(ctx context.Context, deviceID string) []model.Recipe {
	return s.recipes(ctx, deviceID).RecentlyViewedRecipes()
}

// FavoriteStatus reports whether a catalog recipe is a favorite of the device.
func (s *RecipeService) FavoriteStatus(ctx context.Context, deviceID, recipeID string) (model.FavoriteStatus, error) {
	if _, err := s.Get(recipeID); err != nil {
		return model.FavoriteStatus{}, err
	}
	return model.FavoriteStatus{
		RecipeID:   recipeID,
		IsFavorite: s.recipes(ctx, deviceID).IsFavorite(recipeID),
	}, nil
}

// ToggleFavorite flips the favorite flag of a catalog recipe.
func (s *RecipeService) ToggleFavorite(ctx context.Context, deviceID, recipeID string) (model.FavoriteStatus, error) {
	if _, err := s.Get(recipeID); err != nil {
		return model.FavoriteStatus{}, err
	}

	favorited, _ := s.recipes(ctx, deviceID).ToggleFavorite(recipeID)
	s.publish(ctx, queue.NewFavoriteToggledEvent(deviceID, recipeID, favorited))

	return model.FavoriteStatus{RecipeID: recipeID, IsFavorite: favorited}, nil
}

// View records that the device opened a recipe and returns it.
func (s *RecipeService) View(ctx context.Context, deviceID, recipeID string) (model.Recipe, error) {
	r, err := s.Get(recipeID)
	if err != nil {
		return model.Recipe{}, err
	}

	s.recipes(ctx, deviceID).AddToRecentlyViewed(recipeID)
	s.publish(ctx, queue.NewRecipeViewedEvent(deviceID, recipeID))
	return r, nil
}

// Popular returns the most favorited or most viewed recipes across all
// devices. Counted ids that left the catalog are skipped.
func (s *RecipeService) Popular(ctx context.Context, metric string, limit int) ([]model.PopularRecipe, error) {
	if s.popularity == nil {
		return nil, model.ErrPopularityUnavailable
	}

	var key string
	switch metric {
	case model.PopularByFavorites, "":
		key = cache.MetricFavorites
	case model.PopularByViews:
		key = cache.MetricViews
	default:
		return nil, model.ErrUnknownMetric
	}

	if limit <= 0 {
		limit = model.DefaultPopularLimit
	}
	if limit > model.MaxPopularLimit {
		limit = model.MaxPopularLimit
	}

	scores, err := s.popularity.Top(ctx, key, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.PopularRecipe, 0, len(scores))
	for _, sc := range scores {
		r, ok := s.catalog.Recipe(sc.RecipeID)
		if !ok {
			continue
		}
		out = append(out, model.PopularRecipe{Recipe: r, Count: sc.Count})
	}
	return out, nil
}

func (s *RecipeService) recipes(ctx context.Context, deviceID string) *store.RecipeStore {
	return s.sessions.Get(ctx, deviceID).Recipes
}

// publish is best-effort: the preference is already applied.
func (s *RecipeService) publish(ctx context.Context, event queue.PrefEvent) {
	msgID, err := s.publisher.Publish(ctx, queue.StreamPreferences, event)
	if err != nil {
		log.Printf("[RecipeService] Failed to publish %s: device=%s recipe=%s err=%v",
			event.Type, event.DeviceID, event.RecipeID, err)
		return
	}
	if msgID != "" {
		log.Printf("[RecipeService] Published %s: recipe=%s msgID=%s", event.Type, event.RecipeID, msgID)
	}
}
