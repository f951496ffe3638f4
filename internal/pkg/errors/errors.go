package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode는 에러 코드 타입입니다
type ErrorCode string

const (
	// 일반 에러
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"

	// transport 에러
	ErrCodeHandlerNotFound  ErrorCode = "HANDLER_NOT_FOUND"
	ErrCodeReplyAlreadySent ErrorCode = "REPLY_ALREADY_SENT"

	// 샤드 에러
	ErrCodeShardNotFound    ErrorCode = "SHARD_NOT_FOUND"
	ErrCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeVersionConflict  ErrorCode = "VERSION_CONFLICT"

	// 관찰성 에러
	ErrCodeSinkUnavailable ErrorCode = "SINK_UNAVAILABLE"
	ErrCodeGateUnavailable ErrorCode = "GATE_UNAVAILABLE"
)

// AppError는 애플리케이션 에러입니다
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Error는 error 인터페이스를 구현합니다
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap은 원본 에러를 반환합니다
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is는 같은 코드의 AppError를 동일한 에러로 취급합니다
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// WithMetadata는 메타데이터를 추가합니다
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithDetails는 상세 정보를 추가합니다
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// New는 새로운 AppError를 생성합니다
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Newf는 포맷팅된 메시지로 AppError를 생성합니다
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap은 기존 에러를 AppError로 래핑합니다
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	// 이미 AppError인 경우
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
		Err:        err,
	}
}

// Wrapf는 포맷팅된 메시지로 에러를 래핑합니다
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is는 에러가 특정 코드인지 확인합니다
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As는 표준 errors.As를 그대로 노출합니다
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join은 표준 errors.Join을 그대로 노출합니다
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// GetCode는 에러 코드를 반환합니다
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetHTTPStatus는 에러의 HTTP 상태 코드를 반환합니다
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// getHTTPStatus는 에러 코드에 대응하는 HTTP 상태 코드를 반환합니다
func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeHandlerNotFound, ErrCodeShardNotFound, ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case ErrCodeReplyAlreadySent, ErrCodeVersionConflict:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	case ErrCodeSinkUnavailable, ErrCodeGateUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 미리 정의된 에러들
var (
	ErrInvalidRequest   = New(ErrCodeInvalidRequest, "invalid request")
	ErrHandlerNotFound  = New(ErrCodeHandlerNotFound, "no handler registered for action")
	ErrReplyAlreadySent = New(ErrCodeReplyAlreadySent, "reply already sent on this channel")
	ErrShardNotFound    = New(ErrCodeShardNotFound, "shard not found")
	ErrDocumentNotFound = New(ErrCodeDocumentNotFound, "document not found")
	ErrVersionConflict  = New(ErrCodeVersionConflict, "version conflict")
	ErrSinkUnavailable  = New(ErrCodeSinkUnavailable, "metrics sink unavailable")
)
