package sink

import (
	"github.com/YouSangSon/shardwatch/internal/pkg/metrics"
)

// PrometheusSink는 레코드를 샤드별 지연/처리량 메트릭으로 기록합니다
type PrometheusSink struct {
	m *metrics.Metrics
}

// NewPrometheusSink는 새 PrometheusSink를 생성합니다
func NewPrometheusSink(m *metrics.Metrics) *PrometheusSink {
	return &PrometheusSink{m: m}
}

// Emit은 레코드를 메트릭에 반영합니다
func (s *PrometheusSink) Emit(rec Record) error {
	s.m.RecordShardBulk(rec.IndexName, rec.ShardID, rec.Role(), rec.ItemCount, rec.Elapsed(), rec.Failed)
	return nil
}

func (s *PrometheusSink) Name() string { return "prometheus" }
