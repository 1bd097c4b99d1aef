package config

import (
	"os"
	"strconv"
	"strings"
)

// Store drivers understood by the service.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMySQL  = "mysql"
	StoreDriverMemory = "memory"
)

// App holds runtime configuration derived from env vars or files.
type App struct {
	APIPort     string
	Environment string
	LogLevel    string
	LogEncoding string
	CORSOrigins []string

	LogBufferSize int

	StoreDriver         string
	StorePath           string
	DatabaseURL         string
	AppConfigCollection string

	KafkaBrokers string
	KafkaTopic   string

	LogExportCron string
	LogExportDir  string
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	return App{
		APIPort:     getEnv("API_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
		CORSOrigins: getCORSOrigins(),

		LogBufferSize: getEnvInt("LOG_BUFFER_SIZE", 1000),

		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
		StorePath:           getEnv("STORE_PATH", "./data/edge-cache.db"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		AppConfigCollection: getEnv("APP_CONFIG_COLLECTION", "dittoappconfigs"),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "edge-cache-events"),

		LogExportCron: os.Getenv("LOG_EXPORT_CRON"),
		LogExportDir:  getEnv("LOG_EXPORT_DIR", "./logs"),
	}
}

// KafkaBrokerList splits KafkaBrokers into trimmed, non-empty addresses.
func (a App) KafkaBrokerList() []string {
	return splitList(a.KafkaBrokers)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when the variable is unset, malformed or negative.
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

func getCORSOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
