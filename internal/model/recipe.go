package model

import "errors"

// RecipeCategory groups recipes by meal. The empty value means "any category".
type RecipeCategory string

const (
	CategoryAny       RecipeCategory = ""
	CategoryBreakfast RecipeCategory = "breakfast"
	CategoryLunch     RecipeCategory = "lunch"
	CategoryDinner    RecipeCategory = "dinner"
	CategorySnacks    RecipeCategory = "snacks"
	CategoryDesserts  RecipeCategory = "desserts"
)

// DietType is a recipe diet label. DietAll matches every recipe when filtering.
type DietType string

const (
	DietAll        DietType = "all"
	DietVegetarian DietType = "vegetarian"
	DietVegan      DietType = "vegan"
	DietKeto       DietType = "keto"
	DietPaleo      DietType = "paleo"
	DietGlutenFree DietType = "gluten-free"
)

// MaxRecentlyViewed bounds the recently viewed list.
const MaxRecentlyViewed = 10

type Ingredient struct {
	ID     string  `json:"id"`
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Unit   string  `json:"unit"`
}

type NutritionFacts struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Fiber    int `json:"fiber"`
}

// Recipe is a read-only catalog entry.
type Recipe struct {
	ID           string         `json:"id" validate:"required"`
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description"`
	Category     RecipeCategory `json:"category" validate:"oneof=breakfast lunch dinner snacks desserts"`
	DietTypes    []DietType     `json:"diet_types" validate:"dive,oneof=vegetarian vegan keto paleo gluten-free"`
	PrepTime     int            `json:"prep_time" validate:"gte=0"` // minutes
	CookTime     int            `json:"cook_time" validate:"gte=0"` // minutes
	Servings     int            `json:"servings" validate:"gte=1"`
	Difficulty   string         `json:"difficulty" validate:"oneof=easy medium hard"`
	Ingredients  []Ingredient   `json:"ingredients" validate:"dive"`
	Instructions []string       `json:"instructions"`
	Nutrition    NutritionFacts `json:"nutrition"`
	ImageURL     string         `json:"image_url"`
}

// HasDietType reports whether the recipe is labelled with diet.
func (r Recipe) HasDietType(diet DietType) bool {
	for _, d := range r.DietTypes {
		if d == diet {
			return true
		}
	}
	return false
}

// RecipeFilters is the active search/filter criteria of a device.
type RecipeFilters struct {
	SearchQuery      string         `json:"search_query"`
	SelectedCategory RecipeCategory `json:"selected_category"`
	SelectedDietType DietType       `json:"selected_diet_type"`
}

// DefaultRecipeFilters matches the whole catalog.
func DefaultRecipeFilters() RecipeFilters {
	return RecipeFilters{SelectedDietType: DietAll}
}

// UpdateFiltersRequest updates any subset of the filters. A nil field is left unchanged.
type UpdateFiltersRequest struct {
	SearchQuery      *string         `json:"search_query" validate:"omitempty,max=200"`
	SelectedCategory *RecipeCategory `json:"selected_category" validate:"omitempty,oneof=breakfast lunch dinner snacks desserts"`
	SelectedDietType *DietType       `json:"selected_diet_type" validate:"omitempty,oneof=all vegetarian vegan keto paleo gluten-free"`
}

// FavoriteStatus is returned by the favorite endpoints.
type FavoriteStatus struct {
	RecipeID   string `json:"recipe_id"`
	IsFavorite bool   `json:"is_favorite"`
}

// PopularRecipe pairs a catalog recipe with an aggregate counter.
type PopularRecipe struct {
	Recipe Recipe `json:"recipe"`
	Count  int64  `json:"count"`
}

// Popularity metrics accepted by the popular recipes endpoint.
const (
	PopularByFavorites = "favorites"
	PopularByViews     = "views"
)

// Popular list size bounds.
const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

var (
	// ErrRecipeNotFound is returned when a recipe id is not in the catalog
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrPopularityUnavailable is returned when no popularity cache is configured
	ErrPopularityUnavailable = errors.New("popularity counters not available")

	// ErrUnknownMetric is returned for a popularity metric other than favorites or views
	ErrUnknownMetric = errors.New("unknown popularity metric")
)
