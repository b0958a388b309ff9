package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fitpulse/internal/handler"
	"fitpulse/internal/httputil"
	devicemw "fitpulse/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	DeviceHandler     *handler.DeviceHandler
	OnboardingHandler *handler.OnboardingHandler
	AuthHandler       *handler.AuthHandler
	RecipeHandler     *handler.RecipeHandler
	CatalogHandler    *handler.CatalogHandler
	MediaHandler      *handler.MediaHandler
	Tokens            devicemw.TokenParser
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes - no device token required
	r.Post("/devices", cfg.DeviceHandler.Register)

	// Device routes - state is keyed by the device id in the token
	r.Group(func(r chi.Router) {
		r.Use(devicemw.DeviceMiddleware(cfg.Tokens))

		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/", cfg.OnboardingHandler.Get)
			r.Put("/step", cfg.OnboardingHandler.SetStep)
			r.Post("/next", cfg.OnboardingHandler.NextStep)
			r.Post("/previous", cfg.OnboardingHandler.PreviousStep)
			r.Post("/fitness-goals/toggle", cfg.OnboardingHandler.ToggleFitnessGoal)
			r.Post("/dietary-preferences/toggle", cfg.OnboardingHandler.ToggleDietaryPreference)
			r.Post("/equipment/toggle", cfg.OnboardingHandler.ToggleEquipment)
			r.Put("/location-access", cfg.OnboardingHandler.SetLocationAccess)
			r.Put("/avatar", cfg.OnboardingHandler.SetAvatar)
			r.Post("/avatar/upload", cfg.MediaHandler.UploadAvatar)
			r.Put("/completed", cfg.OnboardingHandler.SetCompleted)
			r.Post("/reset", cfg.OnboardingHandler.Reset)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", cfg.AuthHandler.Session)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Post("/complete-onboarding", cfg.AuthHandler.CompleteOnboarding)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", cfg.RecipeHandler.List)
			r.Get("/filters", cfg.RecipeHandler.GetFilters)
			r.Put("/filters", cfg.RecipeHandler.UpdateFilters)
			r.Get("/favorites", cfg.RecipeHandler.Favorites)
			r.Get("/recent", cfg.RecipeHandler.RecentlyViewed)
			r.Get("/popular", cfg.RecipeHandler.Popular)
			r.Get("/{id}", cfg.RecipeHandler.GetByID)
			r.Post("/{id}/favorite", cfg.RecipeHandler.ToggleFavorite)
			r.Get("/{id}/favorite", cfg.RecipeHandler.FavoriteStatus)
			r.Post("/{id}/view", cfg.RecipeHandler.View)
		})

		r.Get("/workouts", cfg.CatalogHandler.ListWorkouts)
		r.Get("/workouts/{id}", cfg.CatalogHandler.GetWorkout)
		r.Get("/challenges", cfg.CatalogHandler.ListChallenges)
		r.Get("/challenges/{id}", cfg.CatalogHandler.GetChallenge)
	})

	return r
}
