package handler

import (
	"context"

	"google.golang.org/grpc"
)

// ShardWriteClient는 ShardWriteService 클라이언트입니다. 모든 호출은 JSON 코덱을 씁니다.
type ShardWriteClient struct {
	cc grpc.ClientConnInterface
}

// NewShardWriteClient는 새 ShardWriteClient를 생성합니다
func NewShardWriteClient(cc grpc.ClientConnInterface) *ShardWriteClient {
	return &ShardWriteClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// Bulk는 bulk 쓰기를 호출합니다
func (c *ShardWriteClient) Bulk(ctx context.Context, in *BulkRequest, opts ...grpc.CallOption) (*BulkReply, error) {
	out := new(BulkReply)
	if err := c.cc.Invoke(ctx, BulkFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// Get은 문서 조회를 호출합니다
func (c *ShardWriteClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetReply, error) {
	out := new(GetReply)
	if err := c.cc.Invoke(ctx, GetFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkStreamClient는 BulkStream의 클라이언트 측 스트림입니다
type BulkStreamClient struct {
	grpc.ClientStream
}

// Send는 요청 하나를 보냅니다
func (x *BulkStreamClient) Send(m *BulkRequest) error {
	return x.ClientStream.SendMsg(m)
}

// Recv는 응답 하나를 받습니다
func (x *BulkStreamClient) Recv() (*BulkReply, error) {
	m := new(BulkReply)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// BulkStream은 양방향 bulk 스트림을 엽니다
func (c *ShardWriteClient) BulkStream(ctx context.Context, opts ...grpc.CallOption) (*BulkStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &ShardWriteServiceDesc.Streams[0], BulkStreamFullMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &BulkStreamClient{ClientStream: stream}, nil
}
