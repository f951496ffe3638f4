// Package shard는 프로세스 내부 샤드 저장소와 샤드 쓰기/읽기 action 핸들러를 제공합니다.
package shard

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/replication"
)

// 아이템 처리 결과
const (
	ResultCreated  = "created"
	ResultUpdated  = "updated"
	ResultDeleted  = "deleted"
	ResultNotFound = "not_found"
)

// Document는 샤드에 저장된 문서입니다
type Document struct {
	ID        string
	Source    json.RawMessage
	Version   int64
	UpdatedAt time.Time
}

// Store는 샤드별 문서를 메모리에 보관합니다
type Store struct {
	mu     sync.RWMutex
	shards map[replication.ShardID]map[string]*Document
	now    func() time.Time
}

// NewStore는 빈 Store를 생성합니다
func NewStore() *Store {
	return &Store{
		shards: make(map[replication.ShardID]map[string]*Document),
		now:    time.Now,
	}
}

func validShard(id replication.ShardID) error {
	if id.Index == "" || id.ID < 0 {
		return errors.Newf(errors.ErrCodeShardNotFound, "no such shard %s", id)
	}
	return nil
}

// ApplyBulk는 아이템을 순서대로 적용합니다.
// 아이템 단위 실패는 응답에 담기고, 샤드 자체가 잘못된 경우에만 에러를 반환합니다.
func (s *Store) ApplyBulk(req *replication.BulkShardRequest) (*replication.BulkShardResponse, error) {
	if req == nil {
		return nil, errors.ErrInvalidRequest
	}
	if err := validShard(req.ShardID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.shards[req.ShardID]
	if !ok {
		docs = make(map[string]*Document)
		s.shards[req.ShardID] = docs
	}

	resp := &replication.BulkShardResponse{
		ShardID: req.ShardID,
		Items:   make([]replication.BulkItemResponse, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		resp.Items = append(resp.Items, s.apply(docs, item))
	}
	return resp, nil
}

// apply는 s.mu를 잡은 상태에서 호출됩니다
func (s *Store) apply(docs map[string]*Document, item replication.BulkItemRequest) replication.BulkItemResponse {
	out := replication.BulkItemResponse{ID: item.ID, OpType: item.OpType, DocID: item.DocID}

	if !item.OpType.Valid() {
		out.Failure = "unknown op_type [" + string(item.OpType) + "]"
		return out
	}
	if item.DocID == "" {
		out.Failure = "document id is required"
		return out
	}
	if item.OpType != replication.OpDelete && !json.Valid(item.Source) {
		out.Failure = "source is not valid JSON"
		return out
	}

	existing := docs[item.DocID]
	now := s.now()

	switch item.OpType {
	case replication.OpIndex:
		out.Result = ResultCreated
		version := int64(1)
		if existing != nil {
			out.Result = ResultUpdated
			version = existing.Version + 1
		}
		docs[item.DocID] = newDocument(item, version, now)
		out.Version = version

	case replication.OpCreate:
		if existing != nil {
			out.Failure = errors.ErrVersionConflict.Message + ": document already exists"
			return out
		}
		docs[item.DocID] = newDocument(item, 1, now)
		out.Result = ResultCreated
		out.Version = 1

	case replication.OpUpdate:
		if existing == nil {
			out.Failure = errors.ErrDocumentNotFound.Message
			return out
		}
		merged, err := mergeSource(existing.Source, item.Source)
		if err != nil {
			out.Failure = err.Error()
			return out
		}
		existing.Source = merged
		existing.Version++
		existing.UpdatedAt = now
		out.Result = ResultUpdated
		out.Version = existing.Version

	case replication.OpDelete:
		if existing == nil {
			out.Result = ResultNotFound
			return out
		}
		delete(docs, item.DocID)
		out.Result = ResultDeleted
		out.Version = existing.Version + 1
	}
	return out
}

func newDocument(item replication.BulkItemRequest, version int64, now time.Time) *Document {
	src := make(json.RawMessage, len(item.Source))
	copy(src, item.Source)
	return &Document{
		ID:        item.DocID,
		Source:    src,
		Version:   version,
		UpdatedAt: now,
	}
}

// mergeSource는 두 JSON 객체의 최상위 필드를 합칩니다 (patch가 우선)
func mergeSource(base, patch json.RawMessage) (json.RawMessage, error) {
	var dst map[string]json.RawMessage
	if err := json.Unmarshal(base, &dst); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidRequest, "stored source is not an object")
	}
	var src map[string]json.RawMessage
	if err := json.Unmarshal(patch, &src); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidRequest, "partial document must be an object")
	}
	if dst == nil {
		dst = make(map[string]json.RawMessage, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	out, err := json.Marshal(dst)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get은 문서를 조회합니다. 없으면 ErrDocumentNotFound를 반환합니다.
func (s *Store) Get(id replication.ShardID, docID string) (*Document, error) {
	if err := validShard(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.shards[id][docID]
	if !ok {
		return nil, errors.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

// Count는 샤드의 문서 수를 반환합니다
func (s *Store) Count(id replication.ShardID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shards[id])
}
