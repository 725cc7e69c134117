package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// OfflineModel is the zero-cost model identifier. It bypasses every
// provider and never consumes quota; callers cannot distinguish it
// structurally from a real model.
const OfflineModel = "offline"

// Config holds all runtime settings for the API server.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	RedisAddr   string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	SettingsTTL time.Duration `envconfig:"SETTINGS_CACHE_TTL" default:"10s"`

	// Generation provider selection. "anthropic", "openai", or
	// "offline" for keyless deployments; the offline model works
	// regardless of provider.
	LLMProvider     string `envconfig:"LLM_PROVIDER" default:"openai"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	// Optional override for OpenAI-compatible gateways.
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	DefaultModel  string `envconfig:"DEFAULT_MODEL" default:"gpt-4o-mini"`

	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	MaxTokens         int           `envconfig:"GENERATION_MAX_TOKENS" default:"1200"`
	Temperature       float64       `envconfig:"GENERATION_TEMPERATURE" default:"0.8"`

	// Global daily cap on provider calls, used to seed the settings
	// table when no daily_limit row exists yet.
	DefaultDailyLimit int `envconfig:"DEFAULT_DAILY_LIMIT" default:"150"`

	// SHA-256 hex digest of the shared curation secret. Empty disables
	// the curation endpoints entirely.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`
}

// Load reads configuration from the environment, after a best-effort
// .env load for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic", "openai", OfflineModel:
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q (supported: anthropic, openai, offline)", cfg.LLMProvider)
	}

	return &cfg, nil
}

// SlogLevel maps the configured level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
