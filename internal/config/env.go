// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "KNU_PORT"
	EnvLogLevel        = "KNU_LOG_LEVEL"
	EnvShutdownTimeout = "KNU_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir  = "KNU_DATA_DIR"
	EnvCacheTTL = "KNU_CACHE_TTL"

	// Scraper
	EnvScraperTimeout    = "KNU_SCRAPER_TIMEOUT"
	EnvScraperMaxRetries = "KNU_SCRAPER_MAX_RETRIES"

	// Chat
	EnvChatTimeout    = "KNU_CHAT_TIMEOUT"
	EnvRefreshTimeout = "KNU_REFRESH_TIMEOUT"

	// Rate Limits
	EnvGlobalRateRPS  = "KNU_GLOBAL_RATE_RPS"
	EnvUserRateBurst  = "KNU_USER_RATE_BURST"
	EnvUserRateRefill = "KNU_USER_RATE_REFILL"

	// LLM Feature
	EnvLLMProviders = "KNU_LLM_PROVIDERS"
	EnvGeminiAPIKey = "KNU_GEMINI_API_KEY"
	EnvGroqAPIKey   = "KNU_GROQ_API_KEY"
	EnvGeminiModel  = "KNU_GEMINI_MODEL"
	EnvGroqModel    = "KNU_GROQ_MODEL"

	// Sentry Feature
	EnvSentryDSN         = "KNU_SENTRY_DSN"
	EnvSentryEnvironment = "KNU_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "KNU_SENTRY_RELEASE"
	EnvSentrySampleRate  = "KNU_SENTRY_SAMPLE_RATE"

	// Metrics Auth Feature
	EnvMetricsUsername = "KNU_METRICS_USERNAME"
	EnvMetricsPassword = "KNU_METRICS_PASSWORD"
)
