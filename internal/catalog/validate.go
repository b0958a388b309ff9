package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field rules and enum values of every record and that ids
// are unique within each collection.
func Validate(data Data) error {
	var errs []error

	for i, r := range data.Recipes {
		if err := validate.Struct(r); err != nil {
			errs = append(errs, fmt.Errorf("recipes[%d] (id %q): %w", i, r.ID, err))
		}
	}
	for i, w := range data.Workouts {
		if err := validate.Struct(w); err != nil {
			errs = append(errs, fmt.Errorf("workouts[%d] (id %q): %w", i, w.ID, err))
		}
	}
	for i, ch := range data.Challenges {
		if err := validate.Struct(ch); err != nil {
			errs = append(errs, fmt.Errorf("challenges[%d] (id %q): %w", i, ch.ID, err))
		}
	}

	errs = append(errs, duplicates("recipes", len(data.Recipes), func(i int) string { return data.Recipes[i].ID })...)
	errs = append(errs, duplicates("workouts", len(data.Workouts), func(i int) string { return data.Workouts[i].ID })...)
	errs = append(errs, duplicates("challenges", len(data.Challenges), func(i int) string { return data.Challenges[i].ID })...)

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}

func duplicates(collection string, n int, id func(int) string) []error {
	var errs []error
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := id(i)
		if first, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %q (first at %d)", collection, i, key, first))
			continue
		}
		seen[key] = i
	}
	return errs
}
