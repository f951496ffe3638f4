package shard

import (
	"context"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/transport"
	"go.uber.org/zap"
)

// Handlers는 Store를 transport action 핸들러로 노출합니다
type Handlers struct {
	store *Store
}

// NewHandlers는 새 Handlers를 생성합니다
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterHandlers는 primary bulk, replica bulk, get action을 svc에 등록합니다
func RegisterHandlers(svc *transport.Service, store *Store) *Handlers {
	h := NewHandlers(store)
	svc.RegisterHandler(replication.ActionBulkPrimary, transport.HandlerFunc(h.BulkPrimary))
	svc.RegisterHandler(replication.ActionBulkReplica, transport.HandlerFunc(h.BulkReplica))
	svc.RegisterHandler(replication.ActionGet, transport.HandlerFunc(h.Get))
	return h
}

// BulkPrimary는 primary 봉투에 담긴 bulk 요청을 적용합니다
func (h *Handlers) BulkPrimary(ctx context.Context, req transport.Request, ch transport.Channel, task *transport.Task) error {
	env, ok := req.(*replication.ConcreteShardRequest)
	if !ok || env == nil {
		return unexpectedRequest(req)
	}
	return h.applyBulk(ctx, env.Inner(), ch, task, true)
}

// BulkReplica는 replica 봉투에 담긴 bulk 요청을 적용합니다
func (h *Handlers) BulkReplica(ctx context.Context, req transport.Request, ch transport.Channel, task *transport.Task) error {
	env, ok := req.(*replication.ConcreteReplicaRequest)
	if !ok || env == nil {
		return unexpectedRequest(req)
	}
	return h.applyBulk(ctx, env.Inner(), ch, task, false)
}

func (h *Handlers) applyBulk(ctx context.Context, inner transport.Request, ch transport.Channel, task *transport.Task, primary bool) error {
	bulk, ok := inner.(*replication.BulkShardRequest)
	if !ok || bulk == nil {
		return unexpectedRequest(inner)
	}

	resp, err := h.store.ApplyBulk(bulk)
	if err != nil {
		return err
	}

	if resp.HasFailures() {
		fields := []zap.Field{
			logger.Index(bulk.Index()),
			logger.Shard(bulk.ShardID.ID),
			logger.Role(primary),
		}
		if task != nil {
			fields = append(fields, logger.TaskID(task.ID))
		}
		logger.Debug(ctx, "bulk shard request had item failures", fields...)
	}

	return ch.SendResponse(resp)
}

// Get은 문서 하나를 읽습니다. 문서가 없으면 Found=false로 응답합니다.
func (h *Handlers) Get(ctx context.Context, req transport.Request, ch transport.Channel, _ *transport.Task) error {
	get, ok := req.(*replication.GetRequest)
	if !ok || get == nil {
		return unexpectedRequest(req)
	}

	resp := &replication.GetResponse{ShardID: get.ShardID, DocID: get.DocID}
	doc, err := h.store.Get(get.ShardID, get.DocID)
	switch {
	case errors.Is(err, errors.ErrCodeDocumentNotFound):
	case err != nil:
		return err
	default:
		resp.Found = true
		resp.Version = doc.Version
		resp.Source = doc.Source
	}
	return ch.SendResponse(resp)
}

func unexpectedRequest(req transport.Request) error {
	return errors.Newf(errors.ErrCodeInvalidRequest, "unexpected request type %T", req)
}
