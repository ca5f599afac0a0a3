// Package genai provides the LLM and embedding integrations for the
// chatbot: Gemini through google.golang.org/genai, Groq through the
// OpenAI-compatible API, and the Gemini embedding REST endpoint.
//
// Fallback strategy:
//  1. Same provider retried with Full Jitter backoff
//  2. Next provider in the configured chain
package genai

import (
	"context"
	"math"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini is Google's Gemini API (native SDK).
	ProviderGemini Provider = "gemini"
	// ProviderGroq is Groq's OpenAI-compatible API.
	ProviderGroq Provider = "groq"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not listed as it uses its own SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq: "https://api.groq.com/openai/v1/",
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// TokenUsage reports the token counts of one LLM call.
type TokenUsage struct {
	PromptTokens   int `json:"prompt_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
}

// Add accumulates another call's usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.ResponseTokens += other.ResponseTokens
	u.TotalTokens += other.TotalTokens
}

// Informational pricing per 1K tokens, in USD. Actual billing depends
// on the provider account; this only gives callers a rough figure.
const (
	promptCostPer1K   = 0.00025
	responseCostPer1K = 0.0005
)

// EstimatedCostUSD returns a rough cost estimate for the usage,
// rounded to six decimal places.
func (u TokenUsage) EstimatedCostUSD() float64 {
	cost := float64(u.PromptTokens)/1000*promptCostPer1K +
		float64(u.ResponseTokens)/1000*responseCostPer1K
	return math.Round(cost*1e6) / 1e6
}

// Result is the outcome of one text generation call.
type Result struct {
	Text  string
	Usage TokenUsage
}

// Generator produces a text completion for a prompt. Implementations
// exist for Gemini and OpenAI-compatible providers, plus a fallback
// wrapper chaining them.
type Generator interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (*Result, error)
	// IsEnabled reports whether the generator is properly initialized.
	IsEnabled() bool
	// Close releases any resources held by the generator.
	Close() error
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first.
	MaxAttempts int
	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
}

// ProviderConfig holds the configuration of a single provider.
type ProviderConfig struct {
	APIKey string
	// Model is the chat model name; empty selects the provider default.
	Model string
}

// LLMConfig holds the configuration of all LLM providers.
type LLMConfig struct {
	// Providers is the fallback order. Only providers with API keys
	// are used.
	Providers []Provider

	Gemini ProviderConfig
	Groq   ProviderConfig

	RetryConfig RetryConfig
}

// Default models. Generation runs at low temperature with a short
// output budget since every call is a routing or short-answer step.
var (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGroqModel   = "llama-3.3-70b-versatile"

	DefaultProviders = []Provider{ProviderGemini, ProviderGroq}
)

// Generation parameters shared by all providers.
const (
	GenerationTemperature = 0.3
	GenerationMaxTokens   = 1024
)

// Retry configuration defaults.
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// HasProvider reports whether the provider has an API key configured.
func (c *LLMConfig) HasProvider(p Provider) bool {
	switch p {
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderGroq:
		return c.Groq.APIKey != ""
	default:
		return false
	}
}

// HasAnyProvider reports whether at least one provider is configured.
func (c *LLMConfig) HasAnyProvider() bool {
	return c.Gemini.APIKey != "" || c.Groq.APIKey != ""
}

// ConfiguredProviders returns the providers with API keys, in fallback order.
func (c *LLMConfig) ConfiguredProviders() []Provider {
	result := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}
