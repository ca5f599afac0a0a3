package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

// FallbackGenerator chains a primary and a fallback Generator.
// The primary is retried with backoff on transient errors; when it
// keeps failing and the error allows it, the fallback provider is tried.
type FallbackGenerator struct {
	primary     Generator
	fallback    Generator
	retryConfig RetryConfig
	logger      *logger.Logger
}

// NewFallbackGenerator wraps primary with retry logic and an optional
// fallback provider. fallback may be nil.
func NewFallbackGenerator(primary, fallback Generator, cfg RetryConfig, log *logger.Logger) *FallbackGenerator {
	return &FallbackGenerator{
		primary:     primary,
		fallback:    fallback,
		retryConfig: cfg,
		logger:      log.WithModule("genai"),
	}
}

// Generate tries the primary generator with retry, then the fallback.
func (f *FallbackGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	if f == nil || f.primary == nil {
		return nil, errors.New("generator not configured")
	}

	start := time.Now()
	provider := f.primary.Provider()

	result, err := f.generateWithRetry(ctx, f.primary, prompt)
	if err == nil {
		return result, nil
	}

	action := ClassifyError(err)
	f.logger.WithError(err).WithFields(map[string]any{
		"provider":    provider,
		"action":      action.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Warn("Primary generator failed")

	if action == ActionFail || f.fallback == nil {
		return nil, err
	}

	f.logger.WithFields(map[string]any{
		"from": provider,
		"to":   f.fallback.Provider(),
	}).Info("Falling back to secondary provider")

	result, err = f.generateWithRetry(ctx, f.fallback, prompt)
	if err == nil {
		return result, nil
	}

	f.logger.WithError(err).WithFields(map[string]any{
		"primary":  provider,
		"fallback": f.fallback.Provider(),
	}).Error("All generators failed")
	return nil, fmt.Errorf("all providers failed: %w", err)
}

func (f *FallbackGenerator) generateWithRetry(ctx context.Context, gen Generator, prompt string) (*Result, error) {
	var lastResult *Result
	err := WithRetry(ctx, f.retryConfig, func() error {
		result, err := gen.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		lastResult = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lastResult, nil
}

// IsEnabled reports whether at least the primary generator is usable.
func (f *FallbackGenerator) IsEnabled() bool {
	return f != nil && f.primary != nil && f.primary.IsEnabled()
}

// Close releases both generators.
func (f *FallbackGenerator) Close() error {
	var errs []error
	if f.primary != nil {
		errs = append(errs, f.primary.Close())
	}
	if f.fallback != nil {
		errs = append(errs, f.fallback.Close())
	}
	return errors.Join(errs...)
}

// Provider returns the primary provider.
func (f *FallbackGenerator) Provider() Provider {
	if f.primary != nil {
		return f.primary.Provider()
	}
	return ""
}
