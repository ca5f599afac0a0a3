// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults
// for the server, scraper, LLM providers, and cache settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/genai"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/sentry"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	GeminiAPIKey string   // Gemini API key, also used for embeddings
	GroqAPIKey   string   // Groq API key (fallback LLM provider)
	GeminiModel  string   // Chat model override (empty = genai default)
	GroqModel    string   // Chat model override (empty = genai default)
	LLMProviders []string // Fallback order, e.g. ["gemini", "groq"]

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir  string        // Data directory for SQLite database and the vector store
	CacheTTL time.Duration // TTL: absolute expiration for scrape snapshots (default: 7 days)

	// Scraper Configuration
	ScraperTimeout    time.Duration
	ScraperMaxRetries int

	// Chat Configuration (embedded)
	Chat ChatConfig
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM Configuration
		GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:   getEnv(EnvGroqAPIKey, ""),
		GeminiModel:  getEnv(EnvGeminiModel, ""),
		GroqModel:    getEnv(EnvGroqModel, ""),
		LLMProviders: splitList(getEnv(EnvLLMProviders, "gemini,groq")),

		// Sentry Configuration
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Server Configuration
		Port:            getEnv(EnvPort, "8000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir:  getEnv(EnvDataDir, getDefaultDataDir()),
		CacheTTL: getDurationEnv(EnvCacheTTL, 168*time.Hour), // TTL: 7 days

		// Scraper Configuration
		ScraperTimeout:    getDurationEnv(EnvScraperTimeout, ScraperRequest),
		ScraperMaxRetries: getIntEnv(EnvScraperMaxRetries, 5),

		// Chat Configuration
		Chat: ChatConfig{
			ChatTimeout:               getDurationEnv(EnvChatTimeout, ChatProcessing),
			RefreshTimeout:            getDurationEnv(EnvRefreshTimeout, RefreshTimeout),
			UserRateLimitBurst:        getFloatEnv(EnvUserRateBurst, 15.0),
			UserRateLimitRefillPerSec: getFloatEnv(EnvUserRateRefill, 0.1), // 1 per 10s
			GlobalRateLimitRPS:        getFloatEnv(EnvGlobalRateRPS, 100.0),
			MaxMessageLength:          1000,
			MaxChunksPerQuery:         5,
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvCacheTTL, c.CacheTTL))
	}
	if c.ScraperTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvScraperTimeout, c.ScraperTimeout))
	}
	if c.ScraperMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvScraperMaxRetries, c.ScraperMaxRetries))
	}
	for _, p := range c.LLMProviders {
		if p != "gemini" && p != "groq" {
			errs = append(errs, fmt.Errorf("%s contains unknown provider %q", EnvLLMProviders, p))
		}
	}
	if err := c.Chat.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chat config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// splitList splits a comma-separated list, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// VectorDir returns the directory holding the persistent vector store.
func (c *Config) VectorDir() string {
	return filepath.Join(c.DataDir, "vectors")
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// LLMConfig builds the provider chain configuration for the genai package.
func (c *Config) LLMConfig() *genai.LLMConfig {
	providers := make([]genai.Provider, 0, len(c.LLMProviders))
	for _, p := range c.LLMProviders {
		providers = append(providers, genai.Provider(p))
	}
	return &genai.LLMConfig{
		Providers: providers,
		Gemini:    genai.ProviderConfig{APIKey: c.GeminiAPIKey, Model: c.GeminiModel},
		Groq:      genai.ProviderConfig{APIKey: c.GroqAPIKey, Model: c.GroqModel},
		RetryConfig: genai.RetryConfig{
			MaxAttempts:  genai.DefaultMaxRetryAttempts,
			InitialDelay: genai.DefaultInitialRetryDelay,
			MaxDelay:     genai.DefaultMaxRetryDelay,
		},
	}
}

// SentryConfig builds the sentry initialization config.
func (c *Config) SentryConfig() sentry.Config {
	return sentry.Config{
		DSN:         c.SentryDSN,
		Environment: c.SentryEnvironment,
		Release:     c.SentryRelease,
		SampleRate:  c.SentrySampleRate,
	}
}
