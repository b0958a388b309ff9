package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fitpulse/internal/httputil"
	"fitpulse/internal/model"
	"fitpulse/internal/service"
	"fitpulse/internal/transport/http/middleware"
)

type RecipeHandler struct {
	recipes *service.RecipeService
}

func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// List handles GET /recipes
// Returns the catalog narrowed by the device's active filters.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"filters": h.recipes.Filters(r.Context(), deviceID),
		"items":   h.recipes.List(r.Context(), deviceID),
	})
}

// GetFilters handles GET /recipes/filters
func (h *RecipeHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.recipes.Filters(r.Context(), deviceID))
}

// UpdateFilters handles PUT /recipes/filters
// Only the fields present in the body change.
func (h *RecipeHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateFiltersRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.recipes.UpdateFilters(r.Context(), deviceID, req))
}

// Favorites handles GET /recipes/favorites
func (h *RecipeHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.recipes.Favorites(r.Context(), deviceID),
	})
}

// RecentlyViewed handles GET /recipes/recent
// Most recent first.
func (h *RecipeHandler) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.recipes.RecentlyViewed(r.Context(), deviceID),
	})
}

// Popular handles GET /recipes/popular?by=favorites|views&limit=N
func (h *RecipeHandler) Popular(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("by")

	limit := model.DefaultPopularLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.recipes.Popular(r.Context(), metric, limit)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownMetric):
			httputil.WriteBadRequest(w, "by must be favorites or views")
		case errors.Is(err, model.ErrPopularityUnavailable):
			httputil.WriteServiceUnavailable(w, "Popularity counters are not available")
		default:
			log.Printf("[ERROR] Popular recipes handler: by=%s err=%v", metric, err)
			httputil.WriteInternalError(w, "Failed to get popular recipes")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// GetByID handles GET /recipes/{id}
// Reading a recipe does not record a view; see View.
func (h *RecipeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipes.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recipe)
}

// ToggleFavorite handles POST /recipes/{id}/favorite
func (h *RecipeHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	status, err := h.recipes.ToggleFavorite(r.Context(), deviceID, chi.URLParam(r, "id"))
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// FavoriteStatus handles GET /recipes/{id}/favorite
func (h *RecipeHandler) FavoriteStatus(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	status, err := h.recipes.FavoriteStatus(r.Context(), deviceID, chi.URLParam(r, "id"))
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// View handles POST /recipes/{id}/view
// Records the recipe as recently viewed and returns it.
func (h *RecipeHandler) View(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDevice(w, r)
	if !ok {
		return
	}
	recipe, err := h.recipes.View(r.Context(), deviceID, chi.URLParam(r, "id"))
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recipe)
}

func requireDevice(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID, ok := middleware.GetDeviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Device token required")
	}
	return deviceID, ok
}

func writeRecipeError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrRecipeNotFound) {
		httputil.WriteNotFound(w, "Recipe not found")
		return
	}
	httputil.WriteInternalError(w, "Failed to process recipe request")
}
