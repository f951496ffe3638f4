package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetry_Success_FirstAttempt(t *testing.T) {
	// Arrange
	attemptCount := 0

	// Act
	err := retry.Do(context.Background(), retry.DefaultConfig(), func(ctx context.Context) error {
		attemptCount++
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, attemptCount)
}

func TestRetry_Success_AfterRetries(t *testing.T) {
	// Arrange
	attemptCount := 0
	failUntil := 3

	// Act
	err := retry.Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attemptCount++
		if attemptCount < failUntil {
			return errors.New("temporary error")
		}
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, failUntil, attemptCount)
}

func TestRetry_Failure_MaxAttemptsReached(t *testing.T) {
	// Arrange
	attemptCount := 0
	expectedErr := errors.New("persistent error")

	// Act
	err := retry.Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		attemptCount++
		return expectedErr
	})

	// Assert
	assert.ErrorIs(t, err, retry.ErrMaxRetriesExceeded)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, attemptCount)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	// Arrange
	fatal := errors.New("bad credentials")
	cfg := fastConfig(5)
	cfg.Retryable = func(err error) bool { return !errors.Is(err, fatal) }
	attemptCount := 0

	// Act
	err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		attemptCount++
		return fatal
	})

	// Assert
	assert.Same(t, fatal, err)
	assert.Equal(t, 1, attemptCount)
}

func TestRetry_ContextCanceled(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(10)
	cfg.InitialInterval = 50 * time.Millisecond
	attemptCount := 0

	// Act
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		attemptCount++
		if attemptCount == 2 {
			cancel()
		}
		return errors.New("error")
	})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attemptCount)
}

func TestBackoff(t *testing.T) {
	cfg := retry.Config{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		Multiplier:      2.0,
	}

	assert.Equal(t, 10*time.Millisecond, retry.Backoff(cfg, 1))
	assert.Equal(t, 20*time.Millisecond, retry.Backoff(cfg, 2))
	assert.Equal(t, 40*time.Millisecond, retry.Backoff(cfg, 3))
	assert.Equal(t, 50*time.Millisecond, retry.Backoff(cfg, 4))
}

func TestDoWithValue(t *testing.T) {
	// Arrange
	attemptCount := 0

	// Act
	val, err := retry.DoWithValue(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		attemptCount++
		if attemptCount == 1 {
			return "", errors.New("not yet")
		}
		return "connected", nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "connected", val)
}

func TestRetry_DefaultConfig(t *testing.T) {
	cfg := retry.DefaultConfig()

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.InitialInterval)
	assert.Equal(t, 5*time.Second, cfg.MaxInterval)
	assert.Equal(t, 2.0, cfg.Multiplier)
}
