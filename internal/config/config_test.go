package config_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/YouSangSon/shardwatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: shardwatch-test
interception:
  enabled: true
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeConfig(t, dir, minimalYAML)

	// Act
	cfg, err := config.LoadConfig(dir, "config")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "shardwatch-test", cfg.App.Name)
	assert.True(t, cfg.Interception.Enabled)
	assert.Equal(t, config.GateSourceStatic, cfg.Interception.Gate.Source)
	assert.Equal(t, 5*time.Second, cfg.Interception.Gate.PollInterval)
	assert.Equal(t, 9090, cfg.Server.GRPC.Port)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.True(t, cfg.Sinks.Log.Enabled)
	assert.False(t, cfg.Sinks.Kafka.Enabled)
	assert.Equal(t, uint32(5), cfg.Sinks.Breaker.ConsecutiveFailures)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeConfig(t, dir, minimalYAML)
	t.Setenv("SHARDWATCH_SINKS_KAFKA_ENABLED", "true")
	t.Setenv("SHARDWATCH_SINKS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SHARDWATCH_INTERCEPTION_GATE_POLL_INTERVAL", "250ms")
	t.Setenv("SHARDWATCH_SERVER_GRPC_PORT", "7000")

	// Act
	cfg, err := config.LoadConfig(dir, "config")

	// Assert
	require.NoError(t, err)
	assert.True(t, cfg.Sinks.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Sinks.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Interception.Gate.PollInterval)
	assert.Equal(t, 7000, cfg.Server.GRPC.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig(t.TempDir(), "absent")
	assert.Error(t, err)
}

func TestLoadConfig_RepositoryConfig(t *testing.T) {
	cfg, err := config.LoadConfig("../../configs", "config")

	require.NoError(t, err)
	assert.Equal(t, "shardwatch", cfg.App.Name)
}

func validConfig() config.Config {
	return config.Config{
		App: config.AppConfig{Name: "shardwatch"},
		Server: config.ServerConfig{
			HTTP: config.HTTPServerConfig{Port: 8080},
			GRPC: config.GRPCServerConfig{Port: 9090},
		},
		Interception: config.InterceptionConfig{
			Gate: config.GateConfig{Source: config.GateSourceStatic, RedisKey: "k"},
		},
		Redis: config.RedisConfig{Host: "localhost", Port: 6379},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:    "missing app name",
			mutate:  func(c *config.Config) { c.App.Name = "" },
			wantErr: "app.name",
		},
		{
			name:    "bad grpc port",
			mutate:  func(c *config.Config) { c.Server.GRPC.Port = 0 },
			wantErr: "server.grpc.port",
		},
		{
			name:    "unknown gate source",
			mutate:  func(c *config.Config) { c.Interception.Gate.Source = "etcd" },
			wantErr: "interception.gate.source",
		},
		{
			name:    "redis gate without redis",
			mutate:  func(c *config.Config) { c.Interception.Gate.Source = config.GateSourceRedis },
			wantErr: "redis.enabled",
		},
		{
			name: "redis gate with redis",
			mutate: func(c *config.Config) {
				c.Interception.Gate.Source = config.GateSourceRedis
				c.Redis.Enabled = true
			},
		},
		{
			name:    "kafka without brokers",
			mutate:  func(c *config.Config) { c.Sinks.Kafka = config.KafkaSinkConfig{Enabled: true, Topic: "t"} },
			wantErr: "sinks.kafka.brokers",
		},
		{
			name:    "tracing sink without tracing",
			mutate:  func(c *config.Config) { c.Sinks.Tracing.Enabled = true },
			wantErr: "observability.tracing.enabled",
		},
		{
			name:    "sampling rate out of range",
			mutate:  func(c *config.Config) { c.Observability.Tracing.SamplingRate = 1.5 },
			wantErr: "sampling_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := validConfig()
			tt.mutate(&cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoader_WatchPicksUpChanges(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := writeConfig(t, dir, minimalYAML)

	loader := config.NewLoader(dir, "config")
	_, err := loader.Load()
	require.NoError(t, err)

	var enabled atomic.Int32
	enabled.Store(-1)
	loader.Watch(func(prev, next *config.Config) {
		if next.Interception.Enabled {
			enabled.Store(1)
		} else {
			enabled.Store(0)
		}
	}, nil)

	// Act
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: shardwatch-test\ninterception:\n  enabled: false\n"), 0o644))

	// Assert
	assert.Eventually(t, func() bool { return enabled.Load() == 0 }, 5*time.Second, 20*time.Millisecond)
}
