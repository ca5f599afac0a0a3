package genai

import (
	"context"
	"errors"
	"fmt"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

// NewGenerator builds the provider chain from configuration: the first
// configured provider becomes primary, the second the fallback.
func NewGenerator(ctx context.Context, cfg *LLMConfig, log *logger.Logger) (Generator, error) {
	providers := cfg.ConfiguredProviders()
	if len(providers) == 0 {
		return nil, errors.New("no LLM provider configured")
	}

	var chain []Generator
	for _, p := range providers {
		gen, err := newProviderGenerator(ctx, cfg, p)
		if err != nil {
			return nil, err
		}
		if gen != nil {
			chain = append(chain, gen)
		}
	}
	if len(chain) == 0 {
		return nil, errors.New("no LLM provider could be initialized")
	}

	var fallback Generator
	if len(chain) > 1 {
		fallback = chain[1]
	}
	return NewFallbackGenerator(chain[0], fallback, cfg.RetryConfig, log), nil
}

func newProviderGenerator(ctx context.Context, cfg *LLMConfig, p Provider) (Generator, error) {
	switch p {
	case ProviderGemini:
		gen, err := newGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil || gen == nil {
			return nil, err
		}
		return gen, nil
	case ProviderGroq:
		gen, err := newOpenAIGenerator(p, cfg.Groq.APIKey, cfg.Groq.Model)
		if err != nil || gen == nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", p)
	}
}
