package handler

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "shardwatch.ShardWriteService"

	BulkFullMethod       = "/" + ServiceName + "/Bulk"
	GetFullMethod        = "/" + ServiceName + "/Get"
	BulkStreamFullMethod = "/" + ServiceName + "/BulkStream"
)

// ShardWriteServiceServer는 ShardWriteService 서버 인터페이스입니다
type ShardWriteServiceServer interface {
	Bulk(context.Context, *BulkRequest) (*BulkReply, error)
	Get(context.Context, *GetRequest) (*GetReply, error)
	BulkStream(ShardWriteService_BulkStreamServer) error
}

// ShardWriteService_BulkStreamServer는 BulkStream의 서버 측 스트림입니다
type ShardWriteService_BulkStreamServer interface {
	Send(*BulkReply) error
	Recv() (*BulkRequest, error)
	grpc.ServerStream
}

type bulkStreamServer struct {
	grpc.ServerStream
}

func (x *bulkStreamServer) Send(m *BulkReply) error {
	return x.ServerStream.SendMsg(m)
}

func (x *bulkStreamServer) Recv() (*BulkRequest, error) {
	m := new(BulkRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func bulkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BulkRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShardWriteServiceServer).Bulk(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BulkFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShardWriteServiceServer).Bulk(ctx, req.(*BulkRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShardWriteServiceServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShardWriteServiceServer).Get(ctx, req.(*GetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func bulkStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(ShardWriteServiceServer).BulkStream(&bulkStreamServer{stream})
}

// ShardWriteServiceDesc는 protoc 없이 작성한 ShardWriteService 서비스 설명입니다.
// 메시지는 JSON 코덱으로 주고받습니다.
var ShardWriteServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShardWriteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Bulk", Handler: bulkHandler},
		{MethodName: "Get", Handler: getHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "BulkStream",
			Handler:       bulkStreamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "shardwatch/shard_write",
}
