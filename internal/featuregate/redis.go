package featuregate

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultRedisKey     = "shardwatch:interception:enabled"
	defaultPollInterval = 5 * time.Second
)

// RedisWatcher는 Redis 키를 주기적으로 읽어 Switch에 반영합니다.
// 클러스터의 모든 노드가 같은 키를 보면 관리 API 한 번으로 전체를 전환할 수 있습니다.
type RedisWatcher struct {
	client   redis.UniversalClient
	key      string
	interval time.Duration
	sw       *Switch
}

// RedisWatcherConfig는 RedisWatcher 설정입니다
type RedisWatcherConfig struct {
	Key          string
	PollInterval time.Duration
}

// NewRedisWatcher는 새 RedisWatcher를 생성합니다. sw가 nil이면 꺼진 Switch를 새로 만듭니다.
func NewRedisWatcher(client redis.UniversalClient, sw *Switch, cfg RedisWatcherConfig) *RedisWatcher {
	if sw == nil {
		sw = NewSwitch(false)
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &RedisWatcher{
		client:   client,
		key:      cfg.Key,
		interval: cfg.PollInterval,
		sw:       sw,
	}
}

// Gate는 watcher가 갱신하는 Switch를 반환합니다
func (w *RedisWatcher) Gate() *Switch {
	return w.sw
}

// Key는 감시 중인 Redis 키입니다
func (w *RedisWatcher) Key() string {
	return w.key
}

// Refresh는 키를 한 번 읽어 Switch에 반영합니다.
// 키가 없으면 끈 것으로 보고, Redis 에러면 마지막 값을 유지하고 에러를 반환합니다.
func (w *RedisWatcher) Refresh(ctx context.Context) error {
	val, err := w.client.Get(ctx, w.key).Result()
	if err == redis.Nil {
		w.apply(ctx, false)
		return nil
	}
	if err != nil {
		return err
	}

	w.apply(ctx, parseFlag(val))
	return nil
}

func (w *RedisWatcher) apply(ctx context.Context, enabled bool) {
	if prev := w.sw.Set(enabled); prev != enabled {
		logger.Info(ctx, "interception gate changed",
			logger.Component("featuregate"),
			zap.String("source", "redis"),
			logger.Enabled(enabled),
		)
	}
}

// Run은 ctx가 끝날 때까지 주기적으로 Refresh를 호출합니다
func (w *RedisWatcher) Run(ctx context.Context) {
	if err := w.Refresh(ctx); err != nil {
		logger.Warn(ctx, "initial gate refresh failed", zap.String("key", w.key), zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				logger.Warn(ctx, "gate refresh failed, keeping last value",
					zap.String("key", w.key),
					logger.Enabled(w.sw.Enabled()),
					zap.Error(err),
				)
			}
		}
	}
}

// Publish는 키에 값을 쓰고 로컬 Switch에도 즉시 반영합니다
func (w *RedisWatcher) Publish(ctx context.Context, enabled bool) error {
	if err := w.client.Set(ctx, w.key, strconv.FormatBool(enabled), 0).Err(); err != nil {
		return err
	}
	w.apply(ctx, enabled)
	return nil
}

func parseFlag(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "on", "yes", "enabled":
		return true
	}
	return false
}
