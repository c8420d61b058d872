package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(context.Background(), fastRetry, "op", isTransient, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(context.Background(), fastRetry, "op", isTransient, func() (int, error) {
		attempts++
		return 0, errTransient
	})
	require.ErrorIs(t, err, errTransient)
	assert.Contains(t, err.Error(), "op failed after 2 retries")
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	attempts := 0
	_, err := RetryWithBackoff(context.Background(), fastRetry, "op", isTransient, func() (int, error) {
		attempts++
		return 0, permanent
	})
	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ZeroRetries(t *testing.T) {
	_, err := RetryWithBackoff(context.Background(), RetryConfig{}, "op", isTransient, func() (int, error) {
		return 0, errTransient
	})
	assert.Equal(t, errTransient, err)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 5, BaseBackoff: time.Hour, MaxBackoff: time.Hour}

	_, err := RetryWithBackoff(ctx, cfg, "op", isTransient, func() (int, error) {
		cancel()
		return 0, errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultRetryConfig().Validate())
	assert.Error(t, RetryConfig{MaxRetries: -1}.Validate())
	assert.Error(t, RetryConfig{MaxJitter: -time.Second}.Validate())
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{429, 500, 503, 529} {
		assert.True(t, isRetryableStatus(code), "%d", code)
	}
	for _, code := range []int{400, 401, 404} {
		assert.False(t, isRetryableStatus(code), "%d", code)
	}
}
