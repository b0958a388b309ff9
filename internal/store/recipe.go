package store

import (
	"context"
	"strings"
	"sync"

	"fitpulse/internal/model"
	"fitpulse/internal/persist"
)

// RecipeSource is the read-only recipe catalog.
type RecipeSource interface {
	Recipes() []model.Recipe
	Recipe(id string) (model.Recipe, bool)
}

// recipeSnapshot is the persisted subset: the two id lists. Filters are
// session-only and reset on restart.
type recipeSnapshot struct {
	FavoriteRecipeIDs []string `json:"favorite_recipe_ids"`
	RecentlyViewedIDs []string `json:"recently_viewed_ids"`
}

// RecipeStore tracks favorites, recently viewed recipes and the active filters.
type RecipeStore struct {
	mu        sync.RWMutex
	favorites []string
	recent    []string // most recent first
	filters   model.RecipeFilters

	source RecipeSource
	key    string
	snap   persist.Snapshotter
}

func NewRecipeStore(key string, snap persist.Snapshotter, source RecipeSource) *RecipeStore {
	return &RecipeStore{
		favorites: []string{},
		recent:    []string{},
		filters:   model.DefaultRecipeFilters(),
		source:    source,
		key:       key,
		snap:      orDiscard(snap),
	}
}

// Hydrate restores favorites and recently viewed ids from the snapshot.
func (s *RecipeStore) Hydrate(ctx context.Context) bool {
	var loaded recipeSnapshot
	if !s.snap.Load(ctx, s.key, &loaded) {
		return false
	}

	recent := dedupe(loaded.RecentlyViewedIDs)
	if len(recent) > model.MaxRecentlyViewed {
		recent = recent[:model.MaxRecentlyViewed]
	}

	s.mu.Lock()
	s.favorites = dedupe(loaded.FavoriteRecipeIDs)
	s.recent = recent
	s.mu.Unlock()
	return true
}

// ToggleFavorite flips membership of id and reports whether it is now a favorite.
func (s *RecipeStore) ToggleFavorite(id string) (bool, *persist.Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = toggle(s.favorites, id)
	return contains(s.favorites, id), s.saveLocked()
}

// AddToRecentlyViewed moves id to the front of the list, dropping the oldest
// entry beyond MaxRecentlyViewed.
func (s *RecipeStore) AddToRecentlyViewed(id string) *persist.Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, model.MaxRecentlyViewed)
	next = append(next, id)
	for _, existing := range s.recent {
		if len(next) == model.MaxRecentlyViewed {
			break
		}
		if existing != id {
			next = append(next, existing)
		}
	}
	s.recent = next
	return s.saveLocked()
}

func (s *RecipeStore) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SearchQuery = query
}

// SetSelectedCategory sets the category filter; model.CategoryAny clears it.
func (s *RecipeStore) SetSelectedCategory(category model.RecipeCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SelectedCategory = category
}

func (s *RecipeStore) SetSelectedDietType(diet model.DietType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SelectedDietType = diet
}

func (s *RecipeStore) Filters() model.RecipeFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

func (s *RecipeStore) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.favorites, id)
}

func (s *RecipeStore) FavoriteIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.favorites...)
}

func (s *RecipeStore) RecentlyViewedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.recent...)
}

// FavoriteRecipes returns favorited recipes in catalog order.
func (s *RecipeStore) FavoriteRecipes() []model.Recipe {
	s.mu.RLock()
	favorites := make(map[string]struct{}, len(s.favorites))
	for _, id := range s.favorites {
		favorites[id] = struct{}{}
	}
	s.mu.RUnlock()

	out := []model.Recipe{}
	for _, r := range s.source.Recipes() {
		if _, ok := favorites[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RecentlyViewedRecipes returns recipes most recent first, skipping ids that
// are no longer in the catalog.
func (s *RecipeStore) RecentlyViewedRecipes() []model.Recipe {
	ids := s.RecentlyViewedIDs()

	out := make([]model.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.source.Recipe(id); ok {
			out = append(out, r)
		}
	}
	return out
}

// FilteredRecipes applies the active filters to the catalog.
func (s *RecipeStore) FilteredRecipes() []model.Recipe {
	return FilterRecipes(s.source.Recipes(), s.Filters())
}

// FilterRecipes keeps the recipes matching every filter, in input order:
// a case-insensitive substring of title or description, the category unless
// it is CategoryAny, and the diet type unless it is DietAll.
func FilterRecipes(recipes []model.Recipe, f model.RecipeFilters) []model.Recipe {
	query := strings.ToLower(f.SearchQuery)

	out := []model.Recipe{}
	for _, r := range recipes {
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Title), query) &&
			!strings.Contains(strings.ToLower(r.Description), query) {
			continue
		}
		if f.SelectedCategory != model.CategoryAny && r.Category != f.SelectedCategory {
			continue
		}
		if f.SelectedDietType != model.DietAll && f.SelectedDietType != "" && !r.HasDietType(f.SelectedDietType) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *RecipeStore) saveLocked() *persist.Pending {
	return s.snap.Save(s.key, recipeSnapshot{
		FavoriteRecipeIDs: s.favorites,
		RecentlyViewedIDs: s.recent,
	})
}
