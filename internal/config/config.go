package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string

	// Blob store
	UploadDir string

	// Pulse enrichment
	PulseAPIKey   string
	PulseAPIURL   string
	EnrichWorkers int

	// Optional log-file directory; empty means stdout only
	LogDir string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "dev"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PulseAPIKey:   getEnv("PULSE_API_KEY", ""),
		PulseAPIURL:   getEnv("PULSE_API_URL", ""),
		EnrichWorkers: getEnvInt("ENRICH_WORKERS", 3),
		LogDir:        getEnv("LOG_DIR", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
