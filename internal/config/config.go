package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the Memory Bridge companion service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	BotToken           string
	TelegramAPIBaseURL string
	// WebhookBaseURL selects push delivery: when set, the Telegram webhook is
	// registered at <WebhookBaseURL>/webhook and long polling is skipped.
	WebhookBaseURL string

	OpenRouterAPIKey      string
	OpenRouterBaseURL     string
	GenerationModel       string
	GenerationMaxTokens   int
	GenerationTemperature float64
	GenerationMaxAttempts int
	GenerationBackoff     time.Duration
	GenerationTimeout     time.Duration

	MemoriesDir string
	RecallDir   string
	DatabaseURL string

	EmbeddingModel string
	EmbeddingDim   int
	RecallLimit    int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "membridge"),
		AllowAnyOrigin:     false,
		BotToken:           trimmedEnv("BOT_TOKEN"),
		TelegramAPIBaseURL: envOrDefault("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		WebhookBaseURL:     trimmedEnv("WEBHOOK_BASE_URL"),
		OpenRouterAPIKey:   trimmedEnv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:  envOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		// Free-tier default matches the original Memory Bridge deployment.
		GenerationModel:       envOrDefault("GENERATION_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
		GenerationMaxTokens:   500,
		GenerationTemperature: 0.7,
		GenerationMaxAttempts: 2,
		GenerationBackoff:     time.Second,
		GenerationTimeout:     60 * time.Second,
		MemoriesDir:           envOrDefault("MEMORIES_DIR", "memories"),
		RecallDir:             envOrDefault("RECALL_DIR", "recall"),
		DatabaseURL:           trimmedEnv("DATABASE_URL"),
		EmbeddingModel:        envOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:          384,
		RecallLimit:           3,
		ShutdownTimeout:       15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationMaxTokens, err = intFromEnv("GENERATION_MAX_TOKENS", cfg.GenerationMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationTemperature, err = floatFromEnv("GENERATION_TEMPERATURE", cfg.GenerationTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationMaxAttempts, err = intFromEnv("GENERATION_MAX_ATTEMPTS", cfg.GenerationMaxAttempts)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationBackoff, err = durationFromEnv("GENERATION_RETRY_BACKOFF", cfg.GenerationBackoff)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationTimeout, err = durationFromEnv("GENERATION_TIMEOUT", cfg.GenerationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.RecallLimit, err = intFromEnv("RECALL_LIMIT", cfg.RecallLimit)
	if err != nil {
		return Config{}, err
	}

	if cfg.GenerationMaxAttempts < 1 {
		return Config{}, fmt.Errorf("GENERATION_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.GenerationBackoff < 0 {
		return Config{}, fmt.Errorf("GENERATION_RETRY_BACKOFF must not be negative")
	}
	if cfg.GenerationMaxTokens <= 0 {
		return Config{}, fmt.Errorf("GENERATION_MAX_TOKENS must be positive")
	}
	if cfg.GenerationTemperature < 0 || cfg.GenerationTemperature > 2 {
		return Config{}, fmt.Errorf("GENERATION_TEMPERATURE must be in [0, 2]")
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	if cfg.RecallLimit <= 0 {
		return Config{}, fmt.Errorf("RECALL_LIMIT must be positive")
	}
	if strings.TrimSpace(cfg.MemoriesDir) == "" {
		return Config{}, fmt.Errorf("MEMORIES_DIR must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
