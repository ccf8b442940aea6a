// Package config resolves runtime configuration through Viper, layering
// config file values under environment variables. A .env file is loaded at
// startup when present.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/logging"
)

// Configuration keys. Environment variables use the same names.
const (
	KeyStorageBackend = "TOOLINDEX_STORAGE_BACKEND"
	KeyStorageDir     = "TOOLINDEX_STORAGE_DIR"
	KeyMinioEndpoint  = "MINIO_ENDPOINT"
	KeyMinioAccessKey = "MINIO_ACCESS_KEY"
	KeyMinioSecretKey = "MINIO_SECRET_KEY"
	KeyMinioBucket    = "MINIO_BUCKET"
	KeyMinioUseSSL    = "MINIO_USE_SSL"

	KeyRedisAddr     = "REDIS_ADDR"
	KeyRedisPassword = "REDIS_PASSWORD"

	KeyGitHubToken      = "GITHUB_TOKEN"
	KeyHuggingFaceToken = "HF_TOKEN"
	KeyGeminiAPIKey     = "GEMINI_API_KEY"
	KeyGeminiModel      = "GEMINI_MODEL"

	KeyAnalyticsDSN       = "ANALYTICS_DATABASE_URL"
	KeyAnalyticsWebsiteID = "ANALYTICS_WEBSITE_ID"
	KeyHistoryDSN         = "HISTORY_DATABASE_URL"

	KeyBaseURL    = "TOOLINDEX_BASE_URL"
	KeyListenAddr = "TOOLINDEX_LISTEN_ADDR"
	KeyTiersFile  = "TOOLINDEX_TIERS_FILE"
)

// Init loads the optional .env file and binds environment variables.
// Called once from the CLI root before any command runs.
func Init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Msg("failed to load .env file")
	}
	viper.AutomaticEnv()
}

// GetString returns the value for key from the environment or config file.
func GetString(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return viper.GetString(key)
}

// GetStringDefault returns the value for key, or fallback when unset.
func GetStringDefault(key, fallback string) string {
	if value := GetString(key); value != "" {
		return value
	}
	return fallback
}

// GetBool returns the boolean value for key.
func GetBool(key string) bool {
	if value := os.Getenv(key); value != "" {
		return value == "1" || value == "true" || value == "yes"
	}
	return viper.GetBool(key)
}

// StorageConfig assembles the storage backend configuration.
func StorageConfig() storage.Config {
	return storage.Config{
		Backend:   GetStringDefault(KeyStorageBackend, storage.BackendLocal),
		Dir:       GetStringDefault(KeyStorageDir, "data"),
		Endpoint:  GetString(KeyMinioEndpoint),
		AccessKey: GetString(KeyMinioAccessKey),
		SecretKey: GetString(KeyMinioSecretKey),
		Bucket:    GetString(KeyMinioBucket),
		UseSSL:    GetBool(KeyMinioUseSSL),
	}
}
