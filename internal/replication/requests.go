// Package replication은 복제되는 샤드 쓰기 요청의 타입 카탈로그입니다.
//
// 복제 쓰기는 봉투(envelope)에 담겨 도착합니다. primary 노드에서는
// ConcreteShardRequest, replica 노드에서는 ConcreteReplicaRequest가 내부
// 요청(보통 BulkShardRequest)을 감쌉니다.
package replication

import (
	"fmt"

	"github.com/YouSangSon/shardwatch/internal/transport"
)

// Transport action 이름
const (
	ActionBulkShard   = "indices:data/write/bulk[s]"
	ActionBulkPrimary = ActionBulkShard + "[p]"
	ActionBulkReplica = ActionBulkShard + "[r]"
	ActionGet         = "indices:data/read/get"
)

// ShardID는 인덱스 내의 샤드 하나를 가리킵니다
type ShardID struct {
	Index string `json:"index"`
	ID    int    `json:"id"`
}

func (s ShardID) String() string {
	return fmt.Sprintf("[%s][%d]", s.Index, s.ID)
}

// ShardEnvelope는 내부 요청을 감싼 복제 요청입니다
type ShardEnvelope interface {
	transport.Request
	Inner() transport.Request
}

// ConcreteShardRequest는 primary 샤드로 향하는 봉투입니다
type ConcreteShardRequest struct {
	Request            transport.Request
	TargetAllocationID string
	PrimaryTerm        int64
}

// Action은 내부 요청의 action에 primary 접미사를 붙입니다
func (r *ConcreteShardRequest) Action() string {
	return envelopeAction(r.Request, "[p]")
}

// Inner는 감싼 요청을 반환합니다
func (r *ConcreteShardRequest) Inner() transport.Request {
	return r.Request
}

// ConcreteReplicaRequest는 replica 샤드로 향하는 봉투입니다.
// primary 봉투를 포함하지만 별개의 타입입니다.
type ConcreteReplicaRequest struct {
	ConcreteShardRequest
	GlobalCheckpoint           int64
	MaxSeqNoOfUpdatesOrDeletes int64
}

// Action은 내부 요청의 action에 replica 접미사를 붙입니다
func (r *ConcreteReplicaRequest) Action() string {
	return envelopeAction(r.Request, "[r]")
}

func envelopeAction(inner transport.Request, suffix string) string {
	if inner == nil {
		return "internal:replication" + suffix
	}
	return inner.Action() + suffix
}

// NewPrimaryRequest는 inner를 primary 봉투에 담습니다
func NewPrimaryRequest(inner transport.Request, allocationID string, primaryTerm int64) *ConcreteShardRequest {
	return &ConcreteShardRequest{
		Request:            inner,
		TargetAllocationID: allocationID,
		PrimaryTerm:        primaryTerm,
	}
}

// NewReplicaRequest는 inner를 replica 봉투에 담습니다
func NewReplicaRequest(inner transport.Request, allocationID string, primaryTerm, globalCheckpoint, maxSeqNo int64) *ConcreteReplicaRequest {
	return &ConcreteReplicaRequest{
		ConcreteShardRequest: ConcreteShardRequest{
			Request:            inner,
			TargetAllocationID: allocationID,
			PrimaryTerm:        primaryTerm,
		},
		GlobalCheckpoint:           globalCheckpoint,
		MaxSeqNoOfUpdatesOrDeletes: maxSeqNo,
	}
}

var (
	_ ShardEnvelope = (*ConcreteShardRequest)(nil)
	_ ShardEnvelope = (*ConcreteReplicaRequest)(nil)
)
