package featuregate_test

import (
	"context"
	"testing"
	"time"

	"github.com/YouSangSon/shardwatch/internal/featuregate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisWatcher_Defaults(t *testing.T) {
	// Arrange
	_, client := setupRedis(t)

	// Act
	w := featuregate.NewRedisWatcher(client, nil, featuregate.RedisWatcherConfig{})

	// Assert
	assert.Equal(t, featuregate.DefaultRedisKey, w.Key())
	require.NotNil(t, w.Gate())
	assert.False(t, w.Gate().Enabled())
}

func TestRedisWatcher_Refresh(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{value: "true", expected: true},
		{value: "1", expected: true},
		{value: " ON ", expected: true},
		{value: "enabled", expected: true},
		{value: "false", expected: false},
		{value: "0", expected: false},
		{value: "garbage", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			// Arrange
			mr, client := setupRedis(t)
			sw := featuregate.NewSwitch(!tt.expected)
			w := featuregate.NewRedisWatcher(client, sw, featuregate.RedisWatcherConfig{Key: "gate"})
			require.NoError(t, mr.Set("gate", tt.value))

			// Act
			err := w.Refresh(context.Background())

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sw.Enabled())
		})
	}
}

func TestRedisWatcher_MissingKeyDisables(t *testing.T) {
	// Arrange
	_, client := setupRedis(t)
	sw := featuregate.NewSwitch(true)
	w := featuregate.NewRedisWatcher(client, sw, featuregate.RedisWatcherConfig{Key: "gate"})

	// Act
	err := w.Refresh(context.Background())

	// Assert
	require.NoError(t, err)
	assert.False(t, sw.Enabled())
}

func TestRedisWatcher_RedisErrorKeepsLastValue(t *testing.T) {
	// Arrange
	mr, client := setupRedis(t)
	sw := featuregate.NewSwitch(true)
	w := featuregate.NewRedisWatcher(client, sw, featuregate.RedisWatcherConfig{Key: "gate"})
	mr.Close()

	// Act
	err := w.Refresh(context.Background())

	// Assert
	assert.Error(t, err)
	assert.True(t, sw.Enabled())
}

func TestRedisWatcher_Publish(t *testing.T) {
	// Arrange
	mr, client := setupRedis(t)
	sw := featuregate.NewSwitch(false)
	w := featuregate.NewRedisWatcher(client, sw, featuregate.RedisWatcherConfig{Key: "gate"})

	// Act
	err := w.Publish(context.Background(), true)

	// Assert
	require.NoError(t, err)
	assert.True(t, sw.Enabled())
	val, getErr := mr.Get("gate")
	require.NoError(t, getErr)
	assert.Equal(t, "true", val)
}

func TestRedisWatcher_RunPicksUpChanges(t *testing.T) {
	// Arrange
	mr, client := setupRedis(t)
	sw := featuregate.NewSwitch(false)
	w := featuregate.NewRedisWatcher(client, sw, featuregate.RedisWatcherConfig{
		Key:          "gate",
		PollInterval: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Act
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	require.NoError(t, mr.Set("gate", "true"))

	// Assert
	assert.Eventually(t, sw.Enabled, time.Second, 5*time.Millisecond)

	mr.Del("gate")
	assert.Eventually(t, func() bool { return !sw.Enabled() }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
