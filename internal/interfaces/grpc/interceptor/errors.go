package interceptor

import (
	"context"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryErrorHandlerInterceptor는 에러를 gRPC 상태 코드로 변환합니다
func UnaryErrorHandlerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		return resp, ToStatusError(err)
	}
}

// StreamErrorHandlerInterceptor는 스트림 에러를 gRPC 상태 코드로 변환합니다
func StreamErrorHandlerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return ToStatusError(handler(srv, ss))
	}
}

// ToStatusError는 AppError와 컨텍스트 에러를 gRPC status 에러로 바꿉니다.
// 이미 status 에러이거나 알 수 없는 에러는 그대로 반환합니다.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return status.Error(mapErrorCodeToGRPC(appErr.Code), appErr.Error())
	}
	if st := status.FromContextError(err); st.Code() != codes.Unknown {
		return st.Err()
	}
	return err
}

// mapErrorCodeToGRPC는 AppError 코드를 gRPC 코드로 매핑합니다
func mapErrorCodeToGRPC(errCode errors.ErrorCode) codes.Code {
	switch errCode {
	case errors.ErrCodeInvalidRequest:
		return codes.InvalidArgument
	case errors.ErrCodeHandlerNotFound:
		return codes.Unimplemented
	case errors.ErrCodeShardNotFound, errors.ErrCodeDocumentNotFound:
		return codes.NotFound
	case errors.ErrCodeVersionConflict:
		return codes.AlreadyExists
	case errors.ErrCodeReplyAlreadySent:
		return codes.FailedPrecondition
	case errors.ErrCodeTimeout:
		return codes.DeadlineExceeded
	case errors.ErrCodeSinkUnavailable, errors.ErrCodeGateUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
