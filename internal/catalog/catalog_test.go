package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitpulse/internal/model"
)

type mockFetcher struct {
	fetchFn func(ctx context.Context, key string) ([]byte, error)
}

func (m *mockFetcher) FetchObject(ctx context.Context, key string) ([]byte, error) {
	return m.fetchFn(ctx, key)
}

func smallData() Data {
	return Data{
		Recipes: []model.Recipe{
			{ID: "r1", Title: "Oats", Category: model.CategoryBreakfast, Servings: 1, Difficulty: "easy", DietTypes: []model.DietType{model.DietVegan}},
		},
		Workouts: []model.Workout{
			{ID: "w1", Title: "Run", Category: model.WorkoutCardio, Difficulty: "beginner"},
		},
		Challenges: []model.Challenge{
			{ID: "c1", Title: "Steps", Type: model.ChallengeSteps, Status: model.ChallengeActive},
		},
	}
}

func TestSeed_IsValidAndIndexed(t *testing.T) {
	c := Seed()

	require.NotEmpty(t, c.Recipes())
	assert.Len(t, c.Workouts(), 3)
	assert.Len(t, c.Challenges(), 3)

	w, ok := c.Workout("2")
	require.True(t, ok)
	assert.Equal(t, "HIIT Cardio Blast", w.Title)
	assert.Equal(t, 45, w.Exercises[1].Duration)

	ch, ok := c.Challenge("1")
	require.True(t, ok)
	assert.Equal(t, "Push-Up Pro", ch.Rewards.Badge)

	for _, r := range c.Recipes() {
		got, ok := c.Recipe(r.ID)
		require.True(t, ok)
		assert.Equal(t, r.Title, got.Title)
	}

	_, ok = c.Recipe("missing")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Data)
		wantErr string
	}{
		{name: "valid", mutate: func(d *Data) {}},
		{
			name:    "duplicate recipe id",
			mutate:  func(d *Data) { d.Recipes = append(d.Recipes, d.Recipes[0]) },
			wantErr: `duplicate id "r1"`,
		},
		{
			name:    "unknown category",
			mutate:  func(d *Data) { d.Recipes[0].Category = "brunch" },
			wantErr: "recipes[0]",
		},
		{
			name:    "all is not a recipe label",
			mutate:  func(d *Data) { d.Recipes[0].DietTypes = []model.DietType{model.DietAll} },
			wantErr: "recipes[0]",
		},
		{
			name:    "missing workout id",
			mutate:  func(d *Data) { d.Workouts[0].ID = "" },
			wantErr: "workouts[0]",
		},
		{
			name:    "unknown challenge status",
			mutate:  func(d *Data) { d.Challenges[0].Status = "paused" },
			wantErr: "challenges[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := smallData()
			tt.mutate(&d)

			err := Validate(d)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"recipes":[],"posts":[]}`))
	assert.Error(t, err)
}

func TestReplace_KeepsPreviousOnError(t *testing.T) {
	c, err := New(smallData())
	require.NoError(t, err)

	bad := smallData()
	bad.Recipes[0].Difficulty = "extreme"
	assert.Error(t, c.Replace(bad))

	_, ok := c.Recipe("r1")
	assert.True(t, ok)
}

func TestLoadObject(t *testing.T) {
	raw, err := json.Marshal(smallData())
	require.NoError(t, err)

	c := Seed()
	err = c.LoadObject(context.Background(), &mockFetcher{
		fetchFn: func(ctx context.Context, key string) ([]byte, error) {
			assert.Equal(t, "catalog/catalog.json", key)
			return raw, nil
		},
	}, "catalog/catalog.json")
	require.NoError(t, err)

	assert.Len(t, c.Recipes(), 1)
	_, ok := c.Recipe("r1")
	assert.True(t, ok)
}

func TestLoadObject_FetchError(t *testing.T) {
	c := Seed()
	before := len(c.Recipes())

	err := c.LoadObject(context.Background(), &mockFetcher{
		fetchFn: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("bucket unavailable")
		},
	}, "catalog.json")

	assert.Error(t, err)
	assert.Len(t, c.Recipes(), before)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	writeData(t, path, smallData())

	c, err := New(Data{})
	require.NoError(t, err)
	require.NoError(t, c.LoadFile(path))

	w, err := NewWatcher(c, path)
	require.NoError(t, err)
	reloaded := make(chan error, 16)
	w.OnReload = func(err error) { reloaded <- err }
	go w.Watch()
	defer w.Close()

	updated := smallData()
	updated.Recipes[0].Title = "Overnight Oats"
	writeData(t, path, updated)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-reloaded:
			if err != nil {
				continue // the file may be caught mid-write
			}
			r, _ := c.Recipe("r1")
			if r.Title == "Overnight Oats" {
				return
			}
		case <-deadline:
			t.Fatal("catalog was not reloaded")
		}
	}
}

func TestWatcher_InvalidFileKeepsCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	writeData(t, path, smallData())

	c, err := New(Data{})
	require.NoError(t, err)
	require.NoError(t, c.LoadFile(path))

	w, err := NewWatcher(c, path)
	require.NoError(t, err)
	reloaded := make(chan error, 16)
	w.OnReload = func(err error) { reloaded <- err }
	go w.Watch()
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"recipes": [`), 0o644))

	select {
	case err := <-reloaded:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload attempt")
	}
	_, ok := c.Recipe("r1")
	assert.True(t, ok)
}

func writeData(t *testing.T, path string, d Data) {
	t.Helper()
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}
