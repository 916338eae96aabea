package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Fetch error policies for non-success responses from the Shopify API.
const (
	FetchErrorPolicyPartial = "partial"
	FetchErrorPolicyFail    = "fail"
)

// Embedding providers.
const (
	EmbeddingProviderRandom = "random"
	EmbeddingProviderOpenAI = "openai"
)

// Config holds all configuration for the application.
type Config struct {
	ShopifyStore       string
	ShopifyAPIVersion  string
	ShopifyAccessToken string
	FetchErrorPolicy   string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	VectorSize       int

	EmbeddingProvider  string
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModelName string

	MetadataFile string
	SyncAPIKey   string
	DBPath       string
	APIPort      string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		ShopifyStore:       getEnv("SHOPIFY_STORE", ""),
		ShopifyAPIVersion:  getEnv("API_VERSION", ""),
		ShopifyAccessToken: getEnv("ACCESS_TOKEN", ""),
		FetchErrorPolicy:   strings.ToLower(getEnv("FETCH_ERROR_POLICY", FetchErrorPolicyPartial)),
		QdrantURL:          getEnv("QDRANT_API_URL", ""),
		QdrantAPIKey:       getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION_NAME", ""),
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", EmbeddingProviderRandom)),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		MetadataFile:       getEnv("METADATA_FILE", "product_metadata_mapping.json"),
		SyncAPIKey:         getEnv("SYNC_API_KEY", ""),
		DBPath:             getEnv("DB_PATH", "./data/product-sync.db"),
		APIPort:            getEnv("API_PORT", "8000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// Must match the dimension of whatever embedder is configured.
	// Changing it only takes effect on the next sync, which recreates the collection.
	vectorSize, err := strconv.Atoi(getEnv("VECTOR_SIZE", "1536"))
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	required := []struct {
		name  string
		value string
	}{
		{"SHOPIFY_STORE", cfg.ShopifyStore},
		{"API_VERSION", cfg.ShopifyAPIVersion},
		{"ACCESS_TOKEN", cfg.ShopifyAccessToken},
		{"QDRANT_API_URL", cfg.QdrantURL},
		{"QDRANT_COLLECTION_NAME", cfg.QdrantCollection},
		{"SYNC_API_KEY", cfg.SyncAPIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%s is required", r.name)
		}
	}

	switch cfg.FetchErrorPolicy {
	case FetchErrorPolicyPartial, FetchErrorPolicyFail:
	default:
		return nil, fmt.Errorf("FETCH_ERROR_POLICY must be %q or %q, got %q", FetchErrorPolicyPartial, FetchErrorPolicyFail, cfg.FetchErrorPolicy)
	}

	switch cfg.EmbeddingProvider {
	case EmbeddingProviderRandom, EmbeddingProviderOpenAI:
	default:
		return nil, fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", EmbeddingProviderRandom, EmbeddingProviderOpenAI, cfg.EmbeddingProvider)
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// parseLogLevel maps a level name to a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
