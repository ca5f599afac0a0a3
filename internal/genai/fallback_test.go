package genai

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

type stubGenerator struct {
	provider Provider
	results  []*Result
	errs     []error
	calls    int
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (*Result, error) {
	i := s.calls
	s.calls++
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	return s.results[i], s.errs[i]
}

func (s *stubGenerator) IsEnabled() bool    { return true }
func (s *stubGenerator) Close() error       { return nil }
func (s *stubGenerator) Provider() Provider { return s.provider }

func testRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestFallbackGeneratorPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &stubGenerator{
		provider: ProviderGemini,
		results:  []*Result{{Text: "답변입니다."}},
		errs:     []error{nil},
	}
	fallback := &stubGenerator{provider: ProviderGroq, results: []*Result{nil}, errs: []error{errors.New("unused")}}

	gen := NewFallbackGenerator(primary, fallback, testRetryConfig(), testLogger())
	result, err := gen.Generate(context.Background(), "질문")

	require.NoError(t, err)
	assert.Equal(t, "답변입니다.", result.Text)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackGeneratorFallsBackOnQuotaError(t *testing.T) {
	t.Parallel()

	primary := &stubGenerator{
		provider: ProviderGemini,
		results:  []*Result{nil},
		errs:     []error{errors.New("quota exceeded")},
	}
	fallback := &stubGenerator{
		provider: ProviderGroq,
		results:  []*Result{{Text: "대체 답변"}},
		errs:     []error{nil},
	}

	gen := NewFallbackGenerator(primary, fallback, testRetryConfig(), testLogger())
	result, err := gen.Generate(context.Background(), "질문")

	require.NoError(t, err)
	assert.Equal(t, "대체 답변", result.Text)
	assert.Equal(t, 1, primary.calls, "quota errors skip retry and go straight to fallback")
}

func TestFallbackGeneratorRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	primary := &stubGenerator{
		provider: ProviderGemini,
		results:  []*Result{nil, {Text: "재시도 성공"}},
		errs:     []error{errors.New("503 unavailable"), nil},
	}

	gen := NewFallbackGenerator(primary, nil, testRetryConfig(), testLogger())
	result, err := gen.Generate(context.Background(), "질문")

	require.NoError(t, err)
	assert.Equal(t, "재시도 성공", result.Text)
	assert.Equal(t, 2, primary.calls)
}

func TestFallbackGeneratorPermanentErrorFailsFast(t *testing.T) {
	t.Parallel()

	primary := &stubGenerator{
		provider: ProviderGemini,
		results:  []*Result{nil},
		errs:     []error{errors.New("invalid api key")},
	}
	fallback := &stubGenerator{
		provider: ProviderGroq,
		results:  []*Result{{Text: "unused"}},
		errs:     []error{nil},
	}

	gen := NewFallbackGenerator(primary, fallback, testRetryConfig(), testLogger())
	_, err := gen.Generate(context.Background(), "질문")

	require.Error(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "permanent errors must not reach the fallback")
}

func TestFallbackGeneratorAllFail(t *testing.T) {
	t.Parallel()

	primary := &stubGenerator{
		provider: ProviderGemini,
		results:  []*Result{nil},
		errs:     []error{errors.New("quota exceeded")},
	}
	fallback := &stubGenerator{
		provider: ProviderGroq,
		results:  []*Result{nil},
		errs:     []error{errors.New("quota exceeded")},
	}

	gen := NewFallbackGenerator(primary, fallback, testRetryConfig(), testLogger())
	_, err := gen.Generate(context.Background(), "질문")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestTokenUsageAdd(t *testing.T) {
	t.Parallel()

	var u TokenUsage
	u.Add(TokenUsage{PromptTokens: 10, ResponseTokens: 5, TotalTokens: 15})
	u.Add(TokenUsage{PromptTokens: 3, ResponseTokens: 2, TotalTokens: 5})

	assert.Equal(t, TokenUsage{PromptTokens: 13, ResponseTokens: 7, TotalTokens: 20}, u)
}
