package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"fitpulse/internal/catalog"
	"fitpulse/internal/config"
	"fitpulse/internal/database"
	"fitpulse/internal/kv"
	"fitpulse/internal/redis"
)

// backend is an opened state storage plus whatever connection backs it.
type backend struct {
	storage kv.Storage
	closeFn func() error
}

func (b backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return backend{}, err
		}
		return backend{storage: kv.NewPostgresStorage(db), closeFn: db.Close}, nil
	case config.StorageRedis:
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return backend{}, err
		}
		return backend{storage: kv.NewRedisStorage(client.Client), closeFn: client.Close}, nil
	case config.StorageMemory:
		return backend{}, errors.New("the memory backend keeps no state outside the server process")
	default:
		return backend{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// showState prints each record of the device as indented JSON, or "(none)".
func showState(ctx context.Context, storage kv.Storage, deviceID string, out io.Writer) error {
	for _, record := range kv.RecordNames {
		key := kv.Key(record, deviceID)
		raw, err := storage.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			fmt.Fprintf(out, "%s: (none)\n", key)
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}

		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			fmt.Fprintf(out, "%s: (unreadable: %v)\n%s\n", key, err, raw)
			continue
		}
		pretty, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintf(out, "%s:\n%s\n", key, pretty)
	}
	return nil
}

// resetState deletes every record of the device.
func resetState(ctx context.Context, storage kv.Storage, deviceID string, out io.Writer) error {
	for _, record := range kv.RecordNames {
		key := kv.Key(record, deviceID)
		if err := storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	fmt.Fprintf(out, "reset %d records of device %s\n", len(kv.RecordNames), deviceID)
	return nil
}

// validateCatalog checks a catalog file without loading it anywhere.
func validateCatalog(path string, out io.Writer) error {
	data, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: ok (recipes=%d workouts=%d challenges=%d)\n",
		path, len(data.Recipes), len(data.Workouts), len(data.Challenges))
	return nil
}
