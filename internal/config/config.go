package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Identity providers accepted by IDENTITY_PROVIDER.
const (
	IdentityFake     = "fake"
	IdentityAccounts = "accounts"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	ServerPort     string
	StorageBackend string

	JWTSecret         string
	DeviceTokenMaxAge int

	IdentityProvider string
	FakeLoginDelayMS int

	PersistWorkers   int
	PersistQueueSize int

	SessionIdleMinutes int

	CatalogPath      string
	CatalogObjectKey string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	DefaultAvatarURL string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	storageBackend := strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	if storageBackend == "" {
		storageBackend = StoragePostgres
	}

	identityProvider := strings.ToLower(os.Getenv("IDENTITY_PROVIDER"))
	if identityProvider == "" {
		identityProvider = IdentityFake
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		RedisURL: os.Getenv("REDIS_URL"),

		ServerPort:     serverPort,
		StorageBackend: storageBackend,

		JWTSecret:         os.Getenv("JWT_SECRET"),
		DeviceTokenMaxAge: positiveInt("DEVICE_TOKEN_MAX_AGE", 31536000),

		IdentityProvider: identityProvider,
		FakeLoginDelayMS: nonNegativeInt("FAKE_LOGIN_DELAY_MS", 1000),

		PersistWorkers:   positiveInt("PERSIST_WORKERS", 4),
		PersistQueueSize: positiveInt("PERSIST_QUEUE_SIZE", 256),

		SessionIdleMinutes: positiveInt("SESSION_IDLE_MINUTES", 30),

		CatalogPath:      os.Getenv("CATALOG_PATH"),
		CatalogObjectKey: os.Getenv("CATALOG_OBJECT_KEY"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		DefaultAvatarURL: os.Getenv("DEFAULT_AVATAR_URL"),
	}, nil
}

// HasR2 reports whether every Cloudflare R2 setting is present.
func (c *Config) HasR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

func positiveInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func nonNegativeInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
