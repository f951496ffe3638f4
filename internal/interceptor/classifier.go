package interceptor

import (
	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/transport"
)

// Decision은 분류 결과의 종류입니다
type Decision string

const (
	DecisionQualifies       Decision = "qualifies"
	DecisionNotShardRequest Decision = "not_shard_request"
	DecisionUnknownEnvelope Decision = "unknown_envelope"
	DecisionNotBulk         Decision = "not_bulk"
	DecisionGateDisabled    Decision = "gate_disabled"
)

// Classification은 요청 하나의 분류 결과입니다.
// Decision이 DecisionQualifies일 때만 나머지 필드가 의미를 가집니다.
type Classification struct {
	Decision  Decision
	IndexName string
	ShardID   int
	ItemCount int
	Primary   bool
}

// Qualifies는 요청이 타이밍 대상인지 보고합니다
func (c Classification) Qualifies() bool {
	return c.Decision == DecisionQualifies
}

func notApplicable(d Decision) Classification {
	return Classification{Decision: d}
}

// Classify는 요청이 primary/replica 샤드 bulk 쓰기인지 판별하고 식별 정보를 꺼냅니다.
//
// 봉투 종류는 구체 타입으로만 구분합니다. ShardEnvelope를 구현하더라도
// 여기 나열되지 않은 타입은 건너뜁니다. 호스트가 새 봉투 타입을 추가하면
// 이 switch에 case를 추가해야 합니다 (그 전까지는 DecisionUnknownEnvelope로 집계됨).
func Classify(req transport.Request) Classification {
	envelope, ok := req.(replication.ShardEnvelope)
	if !ok {
		return notApplicable(DecisionNotShardRequest)
	}

	var (
		primary bool
		inner   transport.Request
	)
	switch e := envelope.(type) {
	case *replication.ConcreteShardRequest:
		if e == nil {
			return notApplicable(DecisionNotBulk)
		}
		primary, inner = true, e.Inner()
	case *replication.ConcreteReplicaRequest:
		if e == nil {
			return notApplicable(DecisionNotBulk)
		}
		primary, inner = false, e.Inner()
	default:
		return notApplicable(DecisionUnknownEnvelope)
	}

	bulk, ok := inner.(*replication.BulkShardRequest)
	if !ok || bulk == nil {
		return notApplicable(DecisionNotBulk)
	}

	return Classification{
		Decision:  DecisionQualifies,
		IndexName: bulk.Index(),
		ShardID:   bulk.ShardID.ID,
		ItemCount: bulk.ItemCount(),
		Primary:   primary,
	}
}
