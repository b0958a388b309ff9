package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"fitpulse/internal/cache"
	"fitpulse/internal/catalog"
	"fitpulse/internal/config"
	"fitpulse/internal/database"
	"fitpulse/internal/handler"
	"fitpulse/internal/identity"
	"fitpulse/internal/kv"
	"fitpulse/internal/model"
	"fitpulse/internal/persist"
	"fitpulse/internal/queue"
	"fitpulse/internal/redis"
	"fitpulse/internal/repository"
	"fitpulse/internal/service"
	"fitpulse/internal/session"
	"fitpulse/internal/worker"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Minute
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// 2. Connect to Database (state backend and/or account provider)
	var db *sqlx.DB
	if cfg.StorageBackend == config.StoragePostgres || cfg.IdentityProvider == config.IdentityAccounts {
		db, err = database.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// 3. Connect to Redis (optional unless it is the state backend)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		log.Println("Connected to Redis successfully")
	}

	// 4. State storage and snapshot writer
	storage, err := newStorage(cfg, db, rdb)
	if err != nil {
		return err
	}
	writer := persist.NewWriter(storage, persist.WriterConfig{
		WorkerCount:  cfg.PersistWorkers,
		QueueSize:    cfg.PersistQueueSize,
		WriteTimeout: persist.DefaultWriteTimeout,
	})
	writer.Start()
	defer writer.Stop()

	// 5. Identity provider
	var provider identity.Provider
	switch cfg.IdentityProvider {
	case config.IdentityAccounts:
		provider = identity.NewAccountProvider(repository.NewAccountRepository(db), cfg.DefaultAvatarURL)
	case config.IdentityFake:
		provider = identity.NewFakeProvider(time.Duration(cfg.FakeLoginDelayMS) * time.Millisecond)
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", cfg.IdentityProvider)
	}
	log.Printf("[Server] Identity provider: %s", cfg.IdentityProvider)

	// 6. Media storage (optional)
	var avatars handler.AvatarStorage
	media, err := service.NewMediaService(ctx, cfg)
	switch {
	case errors.Is(err, model.ErrMediaUnavailable):
		log.Println("[Server] R2 not configured, avatar uploads disabled")
		media = nil
	case err != nil:
		return err
	default:
		avatars = media
	}

	// 7. Catalog
	cat := catalog.Seed()
	if cfg.CatalogObjectKey != "" {
		if media == nil {
			return errors.New("CATALOG_OBJECT_KEY requires R2 configuration")
		}
		if err := cat.LoadObject(ctx, media, cfg.CatalogObjectKey); err != nil {
			return err
		}
	}
	if cfg.CatalogPath != "" {
		if err := cat.LoadFile(cfg.CatalogPath); err != nil {
			return err
		}
		watcher, err := catalog.NewWatcher(cat, cfg.CatalogPath)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go watcher.Watch()
	}
	log.Printf("[Server] Catalog: recipes=%d workouts=%d challenges=%d",
		len(cat.Recipes()), len(cat.Workouts()), len(cat.Challenges()))

	// 8. Preference events and popularity counters (Redis only)
	var (
		publisher  queue.Publisher
		popularity cache.PopularityCache
	)
	if rdb != nil {
		publisher = queue.NewPublisher(rdb.Client)
		popularity = cache.NewPopularityCache(rdb.Client)

		manager := worker.NewManager(queue.NewConsumer(rdb.Client), worker.NewHandler(popularity), worker.DefaultManagerConfig())
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start preference workers: %w", err)
		}
		defer manager.Stop()
	}

	// 9. Sessions, services and handlers
	registry := session.NewRegistry(writer, provider, cat)
	sessionTTL := time.Duration(cfg.SessionIdleMinutes) * time.Minute
	go registry.RunEviction(ctx, sessionSweepInterval, sessionTTL)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.DeviceTokenMaxAge)
	recipes := service.NewRecipeService(registry, cat, publisher, popularity)

	router := NewRouter(RouterConfig{
		DeviceHandler:     handler.NewDeviceHandler(tokens),
		OnboardingHandler: handler.NewOnboardingHandler(registry),
		AuthHandler:       handler.NewAuthHandler(registry),
		RecipeHandler:     handler.NewRecipeHandler(recipes),
		CatalogHandler:    handler.NewCatalogHandler(cat),
		MediaHandler:      handler.NewMediaHandler(registry, avatars, cfg.DefaultAvatarURL),
		Tokens:            tokens,
	})

	// 10. Serve until interrupted
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s (storage=%s)", srv.Addr, cfg.StorageBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func newStorage(cfg *config.Config, db *sqlx.DB, rdb *redis.Client) (kv.Storage, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		return kv.NewPostgresStorage(db), nil
	case config.StorageRedis:
		if rdb == nil {
			return nil, errors.New("STORAGE_BACKEND=redis requires REDIS_URL")
		}
		return kv.NewRedisStorage(rdb.Client), nil
	case config.StorageMemory:
		log.Println("[Server] Using in-memory state storage; state is lost on restart")
		return kv.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}
