package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimatedCostUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		usage TokenUsage
		want  float64
	}{
		{
			name:  "zero usage",
			usage: TokenUsage{},
			want:  0,
		},
		{
			name:  "prompt only",
			usage: TokenUsage{PromptTokens: 1000},
			want:  0.00025,
		},
		{
			name:  "response only",
			usage: TokenUsage{ResponseTokens: 1000},
			want:  0.0005,
		},
		{
			name:  "rounded to six decimals",
			usage: TokenUsage{PromptTokens: 20, ResponseTokens: 10},
			want:  0.00001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, tt.usage.EstimatedCostUSD(), 1e-9)
		})
	}
}

func TestConfiguredProviders(t *testing.T) {
	t.Parallel()

	cfg := LLMConfig{
		Providers: []Provider{ProviderGemini, ProviderGroq},
		Groq:      ProviderConfig{APIKey: "key"},
	}

	assert.Equal(t, []Provider{ProviderGroq}, cfg.ConfiguredProviders())
	assert.True(t, cfg.HasAnyProvider())
	assert.False(t, cfg.HasProvider(ProviderGemini))
}
