package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("BENCHMARK_CACHE_TTL", "")
	t.Setenv("MAX_DESCRIPTION_LENGTH", "")

	cfg := Load()
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.LLMProvider)
	}
	if cfg.NATSSubject != "quote.generated" {
		t.Fatalf("expected default subject quote.generated, got %q", cfg.NATSSubject)
	}
	if cfg.APIRateLimitRPS != 10 {
		t.Fatalf("expected default rate limit 10, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BenchmarkCacheTTL != 10*time.Minute {
		t.Fatalf("expected default cache ttl 10m, got %v", cfg.BenchmarkCacheTTL)
	}
	if cfg.MaxDescriptionLength != 4000 {
		t.Fatalf("expected default max description 4000, got %d", cfg.MaxDescriptionLength)
	}
}

func TestLoadParsesOverridesAndIgnoresGarbage(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("API_MAX_IN_FLIGHT", "many")

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected provider override, got %q", cfg.LLMProvider)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.StoreTimeout != 750*time.Millisecond {
		t.Fatalf("expected store timeout 750ms, got %v", cfg.StoreTimeout)
	}
	if !cfg.S3UseSSL {
		t.Fatalf("expected S3_USE_SSL override")
	}
	if cfg.APIMaxInFlight != 32 {
		t.Fatalf("expected fallback for invalid int, got %d", cfg.APIMaxInFlight)
	}
}
