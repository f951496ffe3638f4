package replication

import (
	"encoding/json"
)

// OpType은 bulk 아이템 하나의 쓰기 종류입니다
type OpType string

const (
	OpIndex  OpType = "index"
	OpCreate OpType = "create"
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
)

// Valid는 알려진 OpType인지 확인합니다
func (o OpType) Valid() bool {
	switch o {
	case OpIndex, OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// RefreshPolicy는 쓰기 이후 검색 가시성 정책입니다
type RefreshPolicy string

const (
	RefreshNone      RefreshPolicy = "false"
	RefreshImmediate RefreshPolicy = "true"
	RefreshWaitUntil RefreshPolicy = "wait_for"
)

// BulkItemRequest는 bulk 요청 안의 개별 쓰기입니다
type BulkItemRequest struct {
	ID     int             `json:"id"`
	OpType OpType          `json:"op_type"`
	DocID  string          `json:"doc_id"`
	Source json.RawMessage `json:"source,omitempty"`
}

// BulkShardRequest는 한 샤드로 향하는 쓰기 묶음입니다
type BulkShardRequest struct {
	ShardID       ShardID
	Items         []BulkItemRequest
	RefreshPolicy RefreshPolicy
}

// NewBulkShardRequest는 새 BulkShardRequest를 생성합니다
func NewBulkShardRequest(shard ShardID, refresh RefreshPolicy, items ...BulkItemRequest) *BulkShardRequest {
	return &BulkShardRequest{
		ShardID:       shard,
		Items:         items,
		RefreshPolicy: refresh,
	}
}

// Action은 bulk 샤드 action 이름입니다
func (r *BulkShardRequest) Action() string {
	return ActionBulkShard
}

// Index는 대상 인덱스 이름입니다
func (r *BulkShardRequest) Index() string {
	return r.ShardID.Index
}

// ItemCount는 묶인 쓰기의 수입니다
func (r *BulkShardRequest) ItemCount() int {
	return len(r.Items)
}

// BulkItemResponse는 아이템 하나의 처리 결과입니다
type BulkItemResponse struct {
	ID      int    `json:"id"`
	OpType  OpType `json:"op_type"`
	DocID   string `json:"doc_id"`
	Version int64  `json:"version,omitempty"`
	Result  string `json:"result,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// Failed는 아이템이 실패했는지 보고합니다
func (r BulkItemResponse) Failed() bool {
	return r.Failure != ""
}

// BulkShardResponse는 BulkShardRequest에 대한 응답입니다
type BulkShardResponse struct {
	ShardID ShardID            `json:"shard_id"`
	Items   []BulkItemResponse `json:"items"`
}

// HasFailures는 실패한 아이템이 있는지 보고합니다
func (r *BulkShardResponse) HasFailures() bool {
	for _, item := range r.Items {
		if item.Failed() {
			return true
		}
	}
	return false
}

// GetRequest는 문서 하나를 읽는 일반 요청입니다 (봉투에 담기지 않음)
type GetRequest struct {
	ShardID ShardID
	DocID   string
}

// Action은 get action 이름입니다
func (r *GetRequest) Action() string {
	return ActionGet
}

// GetResponse는 GetRequest에 대한 응답입니다
type GetResponse struct {
	ShardID ShardID         `json:"shard_id"`
	DocID   string          `json:"doc_id"`
	Found   bool            `json:"found"`
	Version int64           `json:"version,omitempty"`
	Source  json.RawMessage `json:"source,omitempty"`
}
