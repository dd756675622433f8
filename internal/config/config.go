package config

import (
	"os"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	// API Settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// CORS
	CORSOrigins []string

	// Catalog backend: "postgres", "sqlite" or "bleve"
	CatalogBackend string
	PostgresURI    string
	SQLitePath     string
	// CatalogFile seeds the embedded bleve backend at startup.
	CatalogFile string

	// Cache backend: "badger" or "memory"
	CacheBackend string
	CachePath    string

	// Completion backend: "http" or "vertex"
	CompletionProvider string
	CompletionBaseURL  string
	CompletionAPIKey   string
	CompletionModel    string

	// Vertex AI settings (used when CompletionProvider = "vertex")
	GCPProjectID string
	GCPLocation  string
	VertexModel  string

	Debug bool
}

// Load reads configuration from the environment with defaults.
func Load() *Config {
	return &Config{
		APITitle:    getEnv("API_TITLE", "Bookwise Discovery API"),
		APIVersion:  getEnv("API_VERSION", "1.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api/v1"),
		Port:        getEnv("PORT", "8082"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		CatalogBackend: getEnv("CATALOG_BACKEND", "sqlite"),
		PostgresURI:    getEnv("POSTGRES_URI", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/catalog.db"),
		CatalogFile:    getEnv("CATALOG_FILE", "data/catalog.json"),

		CacheBackend: getEnv("CACHE_BACKEND", "memory"),
		CachePath:    getEnv("CACHE_PATH", "data/cache"),

		CompletionProvider: getEnv("COMPLETION_PROVIDER", "http"),
		CompletionBaseURL:  getEnv("COMPLETION_BASE_URL", "http://localhost:11434/v1"),
		CompletionAPIKey:   getEnv("COMPLETION_API_KEY", ""),
		CompletionModel:    getEnv("COMPLETION_MODEL", "qwen2.5:7b"),

		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		GCPLocation:  getEnv("GCP_LOCATION", "us-central1"),
		VertexModel:  getEnv("VERTEX_MODEL", "text-bison"),

		Debug: getEnv("DEBUG", "") != "",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
