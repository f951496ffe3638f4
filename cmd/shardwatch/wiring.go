package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/shardwatch/internal/config"
	"github.com/YouSangSon/shardwatch/internal/featuregate"
	"github.com/YouSangSon/shardwatch/internal/pkg/circuitbreaker"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/YouSangSon/shardwatch/internal/pkg/metrics"
	"github.com/YouSangSon/shardwatch/internal/pkg/retry"
	"github.com/YouSangSon/shardwatch/internal/pkg/tracing"
	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sinkSet은 기동 시 만들어진 싱크 체인과 종료/헬스체크에 필요한 핸들입니다
type sinkSet struct {
	sink    sink.Sink
	kafka   *sink.KafkaSink
	breaker *sink.BreakerSink
}

func (s *sinkSet) Close() error {
	if s.kafka == nil {
		return nil
	}
	return s.kafka.Close()
}

// newRedisClient는 Redis 클라이언트를 만들고 재시도하며 PING으로 연결을 확인합니다
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// buildGate는 설정에 따라 정적 Switch 또는 Redis로 동기화되는 Switch를 만듭니다.
// Redis 키가 아직 없으면 설정 값으로 심어 둡니다.
func buildGate(ctx context.Context, cfg *config.Config, client redis.UniversalClient) (*featuregate.Switch, *featuregate.RedisWatcher, error) {
	sw := featuregate.NewSwitch(cfg.Interception.Enabled)
	if cfg.Interception.Gate.Source != config.GateSourceRedis {
		return sw, nil, nil
	}
	if client == nil {
		return nil, nil, fmt.Errorf("redis gate requires a redis client")
	}

	watcher := featuregate.NewRedisWatcher(client, sw, featuregate.RedisWatcherConfig{
		Key:          cfg.Interception.Gate.RedisKey,
		PollInterval: cfg.Interception.Gate.PollInterval,
	})
	seed := strconv.FormatBool(cfg.Interception.Enabled)
	if err := client.SetNX(ctx, watcher.Key(), seed, 0).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to seed gate key %s: %w", watcher.Key(), err)
	}
	if err := watcher.Refresh(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to read gate key %s: %w", watcher.Key(), err)
	}
	return sw, watcher, nil
}

// kafkaSinkConfig는 설정 파일의 Kafka 값을 sarama 타입으로 바꿉니다
func kafkaSinkConfig(cfg config.KafkaSinkConfig) (sink.KafkaConfig, error) {
	out := sink.KafkaConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		ClientID:     cfg.ClientID,
		RequiredAcks: sarama.RequiredAcks(cfg.RequiredAcks),
		BufferSize:   cfg.Buffer,
		FlushFreq:    cfg.FlushFrequency,
	}

	if cfg.Compression != "" {
		if err := out.Compression.UnmarshalText([]byte(cfg.Compression)); err != nil {
			return out, fmt.Errorf("invalid sinks.kafka.compression: %w", err)
		}
	}
	if cfg.Version != "" {
		v, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return out, fmt.Errorf("invalid sinks.kafka.version: %w", err)
		}
		out.Version = v
	}
	return out, nil
}

// breakerConfig는 싱크 circuit breaker 설정을 만듭니다
func breakerConfig(cfg config.BreakerSinkConfig) circuitbreaker.Config {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return circuitbreaker.Config{
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn(context.Background(), "sink circuit breaker state changed",
				logger.Component("sink"),
				zap.String("sink", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
}

// buildSinks는 활성화된 싱크를 하나의 Multi로 묶습니다.
// Kafka 연결에 실패하면 경고만 남기고 Kafka 없이 계속합니다.
func buildSinks(ctx context.Context, cfg config.SinksConfig, m *metrics.Metrics) (*sinkSet, error) {
	set := &sinkSet{}
	var sinks sink.Multi

	if cfg.Log.Enabled {
		level := zapcore.InfoLevel
		if cfg.Log.Level != "" {
			parsed, err := zapcore.ParseLevel(cfg.Log.Level)
			if err != nil {
				return nil, fmt.Errorf("invalid sinks.log.level: %w", err)
			}
			level = parsed
		}
		sinks = append(sinks, sink.NewLogSink(nil, level))
	}

	if cfg.Prometheus.Enabled {
		sinks = append(sinks, sink.NewPrometheusSink(m))
	}

	if cfg.Kafka.Enabled {
		kcfg, err := kafkaSinkConfig(cfg.Kafka)
		if err != nil {
			return nil, err
		}

		kafkaSink, err := retry.DoWithValue(ctx, retry.DefaultConfig(), func(context.Context) (*sink.KafkaSink, error) {
			return sink.NewKafkaSink(kcfg)
		})
		if err != nil {
			logger.Warn(ctx, "failed to initialize kafka sink, continuing without it",
				zap.Strings("brokers", kcfg.Brokers),
				zap.Error(err),
			)
		} else {
			set.kafka = kafkaSink
			if cfg.Breaker.Enabled {
				set.breaker = sink.NewBreakerSink(kafkaSink, breakerConfig(cfg.Breaker))
				sinks = append(sinks, set.breaker)
			} else {
				sinks = append(sinks, kafkaSink)
			}
		}
	}

	if cfg.Tracing.Enabled {
		sinks = append(sinks, sink.NewTracingSink(tracing.Tracer()))
	}

	if len(sinks) > 0 {
		set.sink = sinks
	}
	return set, nil
}
