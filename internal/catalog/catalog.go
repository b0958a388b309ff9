// Package catalog serves the read-only recipe, workout and challenge reference
// data. The data ships embedded in the binary and can be overridden by a JSON
// file (reloaded when it changes) or by an object in the media bucket.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"fitpulse/internal/model"
)

//go:embed seed.json
var seedJSON []byte

// Data is the on-disk catalog document.
type Data struct {
	Recipes    []model.Recipe    `json:"recipes"`
	Workouts   []model.Workout   `json:"workouts"`
	Challenges []model.Challenge `json:"challenges"`
}

// ObjectFetcher reads an object from remote storage.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

// Catalog is safe for concurrent use. Replace swaps the whole document, so
// slices handed out by readers are never mutated afterwards; callers must not
// modify them either.
type Catalog struct {
	mu         sync.RWMutex
	data       Data
	recipes    map[string]int
	workouts   map[string]int
	challenges map[string]int
}

// New validates data and builds a catalog from it.
func New(data Data) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Seed returns the catalog embedded in the binary.
func Seed() *Catalog {
	data, err := Parse(seedJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	c, err := New(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return c
}

// Parse decodes a catalog document. Unknown fields are rejected.
func Parse(raw []byte) (Data, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var data Data
	if err := dec.Decode(&data); err != nil {
		return Data{}, fmt.Errorf("decode catalog: %w", err)
	}
	return data, nil
}

// ReadFile parses and validates the catalog file at path.
func ReadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read catalog file: %w", err)
	}
	data, err := Parse(raw)
	if err != nil {
		return Data{}, err
	}
	if err := Validate(data); err != nil {
		return Data{}, err
	}
	return data, nil
}

// LoadObject replaces the catalog with the document stored under key.
func (c *Catalog) LoadObject(ctx context.Context, fetcher ObjectFetcher, key string) error {
	raw, err := fetcher.FetchObject(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch catalog object: %w", err)
	}
	data, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := c.Replace(data); err != nil {
		return err
	}
	log.Printf("[Catalog] Loaded object %s", key)
	return nil
}

// LoadFile replaces the catalog with the file at path.
func (c *Catalog) LoadFile(path string) error {
	data, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.Replace(data); err != nil {
		return err
	}
	log.Printf("[Catalog] Loaded file %s", path)
	return nil
}

// Replace validates data and swaps it in. On error the catalog is unchanged.
func (c *Catalog) Replace(data Data) error {
	if err := Validate(data); err != nil {
		return err
	}

	recipes := indexByID(data.Recipes, func(r model.Recipe) string { return r.ID })
	workouts := indexByID(data.Workouts, func(w model.Workout) string { return w.ID })
	challenges := indexByID(data.Challenges, func(ch model.Challenge) string { return ch.ID })

	c.mu.Lock()
	c.data = data
	c.recipes = recipes
	c.workouts = workouts
	c.challenges = challenges
	c.mu.Unlock()

	log.Printf("[Catalog] Ready: recipes=%d workouts=%d challenges=%d",
		len(data.Recipes), len(data.Workouts), len(data.Challenges))
	return nil
}

// Snapshot returns the current document.
func (c *Catalog) Snapshot() Data {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Recipes lists recipes in catalog order.
func (c *Catalog) Recipes() []model.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Recipes
}

func (c *Catalog) Recipe(id string) (model.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.recipes[id]
	if !ok {
		return model.Recipe{}, false
	}
	return c.data.Recipes[i], true
}

func (c *Catalog) Workouts() []model.Workout {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Workouts
}

func (c *Catalog) Workout(id string) (model.Workout, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.workouts[id]
	if !ok {
		return model.Workout{}, false
	}
	return c.data.Workouts[i], true
}

func (c *Catalog) Challenges() []model.Challenge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Challenges
}

func (c *Catalog) Challenge(id string) (model.Challenge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.challenges[id]
	if !ok {
		return model.Challenge{}, false
	}
	return c.data.Challenges[i], true
}

func indexByID[T any](items []T, id func(T) string) map[string]int {
	out := make(map[string]int, len(items))
	for i, item := range items {
		out[id(item)] = i
	}
	return out
}
