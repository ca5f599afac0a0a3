package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiGenerator produces completions through any OpenAI-compatible
// provider, here Groq. It implements the Generator interface.
type openaiGenerator struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAIGenerator creates an OpenAI-compatible generator.
// Returns nil if apiKey is empty (provider disabled).
func newOpenAIGenerator(provider Provider, apiKey, model string) (*openaiGenerator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModel
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiGenerator{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

func (g *openaiGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("openai generator not configured")
	}

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(GenerationTemperature),
		MaxTokens:   openai.Int(GenerationMaxTokens),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &LLMError{Err: fmt.Errorf("chat completion failed: %w", err), Provider: g.provider}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("empty response from %s", g.provider)
	}

	return &Result{
		Text: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: TokenUsage{
			PromptTokens:   int(resp.Usage.PromptTokens),
			ResponseTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:    int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (g *openaiGenerator) IsEnabled() bool {
	return g != nil
}

func (g *openaiGenerator) Close() error {
	return nil
}

func (g *openaiGenerator) Provider() Provider {
	return g.provider
}
