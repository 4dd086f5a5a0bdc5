// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-sourced settings. Server address, database path
// and worker counts come from CLI flags instead; see cmd.
type Config struct {
	// JWTSecret verifies the HS256 tokens issued by the auth provider.
	JWTSecret string

	// PreviewAPIURL is the base URL of the link-preview metadata service.
	PreviewAPIURL string
	// ReaderAPIURL is the base URL of the page-to-text reader service.
	ReaderAPIURL string

	// OpenAIAPIKey enables the LLM summary strategy when non-empty.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// FetchTimeout bounds a single outbound fetch attempt.
	FetchTimeout time.Duration
	// CacheTTL bounds how long enrichment results are memoized.
	CacheTTL time.Duration
}

// Load reads configuration from the environment, consulting a .env file if
// one is present.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		PreviewAPIURL: getEnv("PREVIEW_API_URL", "https://api.microlink.io"),
		ReaderAPIURL:  getEnv("READER_API_URL", "https://r.jina.ai"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		FetchTimeout:  getDuration("FETCH_TIMEOUT", 10*time.Second),
		CacheTTL:      getDuration("CACHE_TTL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
