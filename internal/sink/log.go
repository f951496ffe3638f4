package sink

import (
	"context"

	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogSink는 레코드마다 구조화된 로그 한 줄을 남깁니다
type LogSink struct {
	log   *zap.Logger
	level zapcore.Level
}

// NewLogSink는 새 LogSink를 생성합니다. log가 nil이면 글로벌 로거를 씁니다.
func NewLogSink(log *zap.Logger, level zapcore.Level) *LogSink {
	if log == nil {
		log = logger.GetLogger(context.Background())
	}
	return &LogSink{
		log:   log.With(logger.Component("shard-bulk-timing")),
		level: level,
	}
}

// Emit은 레코드를 로그로 남깁니다
func (s *LogSink) Emit(rec Record) error {
	ce := s.log.Check(s.level, "shard bulk request completed")
	if ce == nil {
		return nil
	}
	ce.Write(
		logger.Index(rec.IndexName),
		logger.Shard(rec.ShardID),
		logger.Role(rec.Primary),
		logger.ItemCount(rec.ItemCount),
		logger.ElapsedMs(rec.ElapsedMillis),
		zap.Bool("failed", rec.Failed),
		zap.String("variant", rec.Variant),
	)
	return nil
}

func (s *LogSink) Name() string { return "log" }
