package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fitpulse/internal/catalog"
	"fitpulse/internal/httputil"
)

// CatalogHandler serves the read-only workout and challenge catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListWorkouts handles GET /workouts
func (h *CatalogHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.catalog.Workouts(),
	})
}

// GetWorkout handles GET /workouts/{id}
func (h *CatalogHandler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, ok := h.catalog.Workout(chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteNotFound(w, "Workout not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, workout)
}

// ListChallenges handles GET /challenges
func (h *CatalogHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.catalog.Challenges(),
	})
}

// GetChallenge handles GET /challenges/{id}
func (h *CatalogHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, ok := h.catalog.Challenge(chi.URLParam(r, "id"))
	if !ok {
		httputil.WriteNotFound(w, "Challenge not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, challenge)
}
