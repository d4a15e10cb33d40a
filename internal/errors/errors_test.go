package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
		retry    bool
	}{
		{"conflict", ErrCodeConflict, CategoryStorage, SeverityError, false},
		{"adapter fetch", ErrCodeAdapterFetch, CategoryNetwork, SeverityWarning, true},
		{"embedding down", ErrCodeEmbeddingUnavailable, CategoryNetwork, SeverityWarning, false},
		{"invalid crawl config", ErrCodeInvalidConfig, CategoryValidation, SeverityError, false},
		{"corrupt index", ErrCodeCorruptIndex, CategoryStorage, SeverityFatal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retry, err.Retryable)
		})
	}
}

func TestSeekError_ChainSupport(t *testing.T) {
	cause := errors.New("connection refused")
	err := AdapterFetch("fetching search page", cause)

	wrapped := fmt.Errorf("job failed: %w", err)

	assert.True(t, errors.Is(wrapped, err))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, ErrCodeAdapterFetch, GetCode(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestNotFoundAndConflict_Predicates(t *testing.T) {
	nf := NotFound("document", "doc-1")
	cf := Conflict("document", "doc-1")

	assert.True(t, IsNotFound(nf))
	assert.False(t, IsNotFound(cf))
	assert.True(t, IsConflict(cf))
	assert.Contains(t, nf.Error(), "doc-1")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0}

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2.0}

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("permanent")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial + 2 retries
	assert.ErrorContains(t, err, "failed after 2 retries")
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultRetryConfig()
	err := Retry(ctx, cfg, func() error { return errors.New("never reached") })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithResult_ReturnsValue(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}

	calls := 0
	v, err := RetryWithResult(context.Background(), cfg, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
