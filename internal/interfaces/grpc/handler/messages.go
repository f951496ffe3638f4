package handler

import (
	"encoding/json"

	"github.com/YouSangSon/shardwatch/internal/replication"
)

// 샤드 역할
const (
	RolePrimary = "primary"
	RoleReplica = "replica"
)

// BulkItem은 BulkRequest 안의 쓰기 하나입니다
type BulkItem struct {
	OpType string          `json:"op_type"`
	DocID  string          `json:"doc_id"`
	Source json.RawMessage `json:"source,omitempty"`
}

// BulkRequest는 한 샤드에 대한 bulk 쓰기 요청입니다.
// Role이 비어 있으면 primary로 처리합니다.
type BulkRequest struct {
	Index            string     `json:"index"`
	Shard            int        `json:"shard"`
	Role             string     `json:"role,omitempty"`
	AllocationID     string     `json:"allocation_id,omitempty"`
	PrimaryTerm      int64      `json:"primary_term,omitempty"`
	GlobalCheckpoint int64      `json:"global_checkpoint,omitempty"`
	MaxSeqNo         int64      `json:"max_seq_no,omitempty"`
	Refresh          string     `json:"refresh,omitempty"`
	Items            []BulkItem `json:"items"`
}

// BulkReply는 BulkRequest에 대한 응답입니다
type BulkReply struct {
	Index  string                         `json:"index"`
	Shard  int                            `json:"shard"`
	Errors bool                           `json:"errors"`
	Items  []replication.BulkItemResponse `json:"items"`
}

// GetRequest는 문서 하나를 읽는 요청입니다
type GetRequest struct {
	Index string `json:"index"`
	Shard int    `json:"shard"`
	DocID string `json:"doc_id"`
}

// GetReply는 GetRequest에 대한 응답입니다
type GetReply struct {
	Index   string          `json:"index"`
	Shard   int             `json:"shard"`
	DocID   string          `json:"doc_id"`
	Found   bool            `json:"found"`
	Version int64           `json:"version,omitempty"`
	Source  json.RawMessage `json:"source,omitempty"`
}
