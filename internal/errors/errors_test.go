package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelIdentity(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("refresh: %w", ErrStoreUnavailable)
	assert.True(t, errors.Is(wrapped, ErrStoreUnavailable))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	err := NewValidationError("student_id", "must not be empty")
	assert.Equal(t, "validation failed on student_id: must not be empty", err.Error())
}

func TestScrapeError(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	err := NewScrapeError("https://lms.kangnam.ac.kr", 502, cause)

	assert.Contains(t, err.Error(), "status=502")
	assert.True(t, errors.Is(err, cause))

	noStatus := NewScrapeError("https://lms.kangnam.ac.kr", 0, cause)
	assert.NotContains(t, noStatus.Error(), "status=")
}
