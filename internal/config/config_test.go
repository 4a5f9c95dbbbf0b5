package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Errorf("unexpected default model id: %s", cfg.GeminiModelID)
	}
	if cfg.CallbackTimeout != 5*time.Second {
		t.Errorf("expected 5s callback timeout, got %s", cfg.CallbackTimeout)
	}
	if cfg.SessionBackend != "memory" {
		t.Errorf("expected memory session backend, got %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %s", cfg.SessionTTL)
	}
}

func TestLoadGeminiKeyList(t *testing.T) {
	t.Setenv("GEMINI_API_KEYS", "key-a, key-b ,key-c,")

	cfg := Load()
	if len(cfg.GeminiAPIKeys) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(cfg.GeminiAPIKeys), cfg.GeminiAPIKeys)
	}
	if cfg.GeminiAPIKeys[1] != "key-b" {
		t.Errorf("expected trimmed key-b, got %q", cfg.GeminiAPIKeys[1])
	}
}

func TestLoadSingleKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "solo-key")

	cfg := Load()
	if len(cfg.GeminiAPIKeys) != 1 || cfg.GeminiAPIKeys[0] != "solo-key" {
		t.Fatalf("expected GEMINI_API_KEY fallback, got %v", cfg.GeminiAPIKeys)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ops.example.com,https://dash.example.com")

	cfg := Load()
	if cfg.SessionBackend != "redis" {
		t.Errorf("expected lower-cased backend, got %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h TTL, got %s", cfg.SessionTTL)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Errorf("expected 2.5 rps, got %f", cfg.RateLimitPerSecond)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
}
