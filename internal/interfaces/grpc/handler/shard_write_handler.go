package handler

import (
	"context"
	"io"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/transport"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Dispatcher는 요청을 transport 핸들러로 보내는 쪽입니다 (*transport.Service)
type Dispatcher interface {
	Dispatch(ctx context.Context, req transport.Request) (transport.Reply, error)
}

// ShardWriteHandler는 ShardWriteService gRPC 핸들러입니다
type ShardWriteHandler struct {
	dispatcher Dispatcher
}

// NewShardWriteHandler는 새로운 ShardWriteHandler를 생성합니다
func NewShardWriteHandler(dispatcher Dispatcher) *ShardWriteHandler {
	return &ShardWriteHandler{dispatcher: dispatcher}
}

// Register는 gRPC 서버에 서비스를 등록합니다
func (h *ShardWriteHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&ShardWriteServiceDesc, h)
}

// Bulk는 한 샤드에 대한 bulk 쓰기를 primary 또는 replica 봉투에 담아 디스패치합니다
func (h *ShardWriteHandler) Bulk(ctx context.Context, req *BulkRequest) (*BulkReply, error) {
	envelope, err := toEnvelope(req)
	if err != nil {
		return nil, err
	}

	reply, err := h.dispatcher.Dispatch(ctx, envelope)
	if err != nil {
		return nil, err
	}

	switch reply.Variant {
	case transport.VariantResponse:
		resp, ok := reply.Response.(*replication.BulkShardResponse)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInternal, "unexpected bulk response type %T", reply.Response)
		}
		out := &BulkReply{
			Index:  resp.ShardID.Index,
			Shard:  resp.ShardID.ID,
			Errors: resp.HasFailures(),
			Items:  resp.Items,
		}
		logger.Debug(ctx, "bulk request applied",
			logger.Index(out.Index),
			logger.Shard(out.Shard),
			zap.String("role", req.Role),
			logger.ItemCount(len(out.Items)),
			zap.Bool("errors", out.Errors),
		)
		return out, nil
	case transport.VariantError:
		return nil, reply.Err
	default:
		return nil, errors.Newf(errors.ErrCodeInternal, "unexpected %s reply for bulk request", reply.Variant)
	}
}

// Get은 문서 하나를 읽습니다
func (h *ShardWriteHandler) Get(ctx context.Context, req *GetRequest) (*GetReply, error) {
	if req.Index == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "index is required")
	}
	if req.DocID == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "doc_id is required")
	}

	reply, err := h.dispatcher.Dispatch(ctx, &replication.GetRequest{
		ShardID: replication.ShardID{Index: req.Index, ID: req.Shard},
		DocID:   req.DocID,
	})
	if err != nil {
		return nil, err
	}
	if reply.Variant == transport.VariantError {
		return nil, reply.Err
	}

	resp, ok := reply.Response.(*replication.GetResponse)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeInternal, "unexpected get response type %T", reply.Response)
	}
	return &GetReply{
		Index:   resp.ShardID.Index,
		Shard:   resp.ShardID.ID,
		DocID:   resp.DocID,
		Found:   resp.Found,
		Version: resp.Version,
		Source:  resp.Source,
	}, nil
}

// BulkStream은 스트림으로 들어오는 bulk 요청을 하나씩 처리해 같은 순서로 응답합니다.
// 요청 하나가 실패하면 스트림을 그 에러로 종료합니다.
func (h *ShardWriteHandler) BulkStream(stream ShardWriteService_BulkStreamServer) error {
	ctx := stream.Context()
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		reply, err := h.Bulk(ctx, req)
		if err != nil {
			return err
		}
		if err := stream.Send(reply); err != nil {
			return err
		}
	}
}

// toEnvelope는 wire 요청을 role에 맞는 복제 봉투로 바꿉니다
func toEnvelope(req *BulkRequest) (transport.Request, error) {
	if req == nil || req.Index == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "index is required")
	}
	if req.Shard < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidRequest, "shard must be non-negative, got %d", req.Shard)
	}

	refresh := replication.RefreshPolicy(req.Refresh)
	if refresh == "" {
		refresh = replication.RefreshNone
	}

	items := make([]replication.BulkItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = replication.BulkItemRequest{
			ID:     i,
			OpType: replication.OpType(it.OpType),
			DocID:  it.DocID,
			Source: it.Source,
		}
	}
	bulk := replication.NewBulkShardRequest(replication.ShardID{Index: req.Index, ID: req.Shard}, refresh, items...)

	switch req.Role {
	case "", RolePrimary:
		return replication.NewPrimaryRequest(bulk, req.AllocationID, req.PrimaryTerm), nil
	case RoleReplica:
		return replication.NewReplicaRequest(bulk, req.AllocationID, req.PrimaryTerm, req.GlobalCheckpoint, req.MaxSeqNo), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidRequest, "unknown role %q", req.Role)
	}
}

var _ ShardWriteServiceServer = (*ShardWriteHandler)(nil)
