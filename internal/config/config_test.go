package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.PreviewAPIURL != "https://api.microlink.io" {
		t.Errorf("expected default preview URL, got %q", cfg.PreviewAPIURL)
	}
	if cfg.ReaderAPIURL != "https://r.jina.ai" {
		t.Errorf("expected default reader URL, got %q", cfg.ReaderAPIURL)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected default fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected default cache TTL, got %v", cfg.CacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("PREVIEW_API_URL", "http://localhost:9999")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("CACHE_TTL", "120")

	cfg := Load()

	if cfg.JWTSecret != "s3cr3t" {
		t.Errorf("expected JWT secret override, got %q", cfg.JWTSecret)
	}
	if cfg.PreviewAPIURL != "http://localhost:9999" {
		t.Errorf("expected preview URL override, got %q", cfg.PreviewAPIURL)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("expected 3s fetch timeout, got %v", cfg.FetchTimeout)
	}
	// Bare integers are treated as seconds
	if cfg.CacheTTL != 120*time.Second {
		t.Errorf("expected 120s cache TTL, got %v", cfg.CacheTTL)
	}
}

func TestGetDurationFallback(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")

	if got := getDuration("FETCH_TIMEOUT", time.Second); got != time.Second {
		t.Errorf("expected fallback duration, got %v", got)
	}
}
