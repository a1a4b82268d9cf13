package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.GenerationMaxAttempts != 2 {
		t.Fatalf("GenerationMaxAttempts = %d, want 2", cfg.GenerationMaxAttempts)
	}
	if cfg.GenerationBackoff != time.Second {
		t.Fatalf("GenerationBackoff = %v, want 1s", cfg.GenerationBackoff)
	}
	if cfg.OpenRouterBaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("OpenRouterBaseURL = %q, want openrouter default", cfg.OpenRouterBaseURL)
	}
	if cfg.EmbeddingDim != 384 {
		t.Fatalf("EmbeddingDim = %d, want 384", cfg.EmbeddingDim)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
}

func TestLoadUsesExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("GENERATION_MAX_ATTEMPTS", "3")
	t.Setenv("GENERATION_RETRY_BACKOFF", "250ms")
	t.Setenv("WEBHOOK_BASE_URL", "https://bridge.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GenerationMaxAttempts != 3 {
		t.Fatalf("GenerationMaxAttempts = %d, want 3", cfg.GenerationMaxAttempts)
	}
	if cfg.GenerationBackoff != 250*time.Millisecond {
		t.Fatalf("GenerationBackoff = %v, want 250ms", cfg.GenerationBackoff)
	}
	if cfg.WebhookBaseURL != "https://bridge.example.com" {
		t.Fatalf("WebhookBaseURL = %q, want explicit value", cfg.WebhookBaseURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("GENERATION_MAX_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for zero attempts")
	}

	setCoreEnvEmpty(t)
	t.Setenv("GENERATION_TEMPERATURE", "not-a-float")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected parse error for temperature")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"BOT_TOKEN",
		"TELEGRAM_API_BASE_URL",
		"WEBHOOK_BASE_URL",
		"OPENROUTER_API_KEY",
		"OPENROUTER_BASE_URL",
		"GENERATION_MODEL",
		"GENERATION_MAX_TOKENS",
		"GENERATION_TEMPERATURE",
		"GENERATION_MAX_ATTEMPTS",
		"GENERATION_RETRY_BACKOFF",
		"GENERATION_TIMEOUT",
		"MEMORIES_DIR",
		"RECALL_DIR",
		"DATABASE_URL",
		"EMBEDDING_MODEL",
		"EMBEDDING_DIM",
		"RECALL_LIMIT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
