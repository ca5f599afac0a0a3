package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil error", nil, ActionFail},
		{"context canceled", context.Canceled, ActionFail},
		{"deadline exceeded", context.DeadlineExceeded, ActionRetry},
		{"quota exhausted", errors.New("quota exceeded for this project"), ActionFallback},
		{"billing issue", errors.New("billing account disabled"), ActionFallback},
		{"rate limited", errors.New("rate limit exceeded, slow down"), ActionRetry},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED: try later"), ActionRetry},
		{"server unavailable", errors.New("service unavailable (503)"), ActionRetry},
		{"overloaded", errors.New("the model is overloaded"), ActionRetry},
		{"bad request", errors.New("400 bad request"), ActionFail},
		{"unauthorized", errors.New("invalid api key"), ActionFail},
		{"forbidden", errors.New("permission denied"), ActionFail},
		{"not found", errors.New("model not found"), ActionFail},
		{"unknown error", errors.New("something odd happened"), ActionRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestClassifyErrorStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		want       ErrorAction
	}{
		{"too many requests", 429, ActionRetry},
		{"request timeout", 408, ActionRetry},
		{"conflict", 409, ActionRetry},
		{"internal server error", 500, ActionRetry},
		{"bad gateway", 502, ActionRetry},
		{"bad request", 400, ActionFail},
		{"unauthorized", 401, ActionFail},
		{"forbidden", 403, ActionFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := &LLMError{
				Err:        errors.New("api error"),
				StatusCode: tt.statusCode,
				Provider:   ProviderGemini,
			}
			assert.Equal(t, tt.want, ClassifyError(err))
		})
	}
}

func TestLLMErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := &LLMError{Err: inner, StatusCode: 500, Provider: ProviderGroq}

	require.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "status: 500")
	assert.True(t, IsRetryable(err))
	assert.False(t, IsPermanent(err))
}

func TestErrorActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "retry", ActionRetry.String())
	assert.Equal(t, "fallback", ActionFallback.String())
	assert.Equal(t, "fail", ActionFail.String())
}
