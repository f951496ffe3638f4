package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultProfile = "default"
	defaultVersion = "1"
)

// Service는 action별 핸들러 레지스트리이자 디스패처입니다
type Service struct {
	profile string
	version string

	mu           sync.RWMutex
	handlers     map[string]Handler
	interceptors []Interceptor

	nextTaskID atomic.Int64
}

// ServiceOption은 Service 옵션입니다
type ServiceOption func(*Service)

// WithProfile은 채널 profile 이름을 지정합니다
func WithProfile(name string) ServiceOption {
	return func(s *Service) { s.profile = name }
}

// WithVersion은 채널 버전을 지정합니다
func WithVersion(v string) ServiceOption {
	return func(s *Service) { s.version = v }
}

// NewService는 새 Service를 생성합니다
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		profile:  defaultProfile,
		version:  defaultVersion,
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddInterceptor는 이후 등록되는 핸들러에 적용할 Interceptor를 추가합니다.
// 이미 등록된 핸들러에는 영향을 주지 않습니다.
func (s *Service) AddInterceptor(i Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interceptors = append(s.interceptors, i)
}

// RegisterHandler는 action에 핸들러를 등록합니다. 같은 action을 다시 등록하면 교체합니다.
func (s *Service) RegisterHandler(action string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.interceptors {
		h = i.InterceptHandler(action, h)
	}
	s.handlers[action] = h
}

// Handler는 action에 등록된 (interceptor가 적용된) 핸들러를 반환합니다
func (s *Service) Handler(action string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[action]
	return h, ok
}

// Dispatch는 요청을 등록된 핸들러로 보내고 응답을 기다립니다.
//
// 핸들러가 응답 없이 에러를 반환하면 그 에러를 실패 응답으로 보냅니다.
// 핸들러가 nil을 반환하고 나중에 응답하는 경우 ctx가 끝날 때까지 기다립니다.
func (s *Service) Dispatch(ctx context.Context, req Request) (Reply, error) {
	if req == nil {
		return Reply{}, errors.ErrInvalidRequest
	}

	action := req.Action()
	h, ok := s.Handler(action)
	if !ok {
		return Reply{}, errors.Newf(errors.ErrCodeHandlerNotFound, "no handler registered for action [%s]", action)
	}

	task := &Task{
		ID:        s.nextTaskID.Add(1),
		Action:    action,
		StartTime: time.Now(),
	}
	ch := NewLocalChannel(s.profile, s.version)

	if err := h.MessageReceived(ctx, req, ch, task); err != nil {
		if ch.Replied() {
			logger.Warn(ctx, "handler failed after replying",
				logger.Action(action),
				logger.TaskID(task.ID),
				zap.Error(err),
			)
		} else if sendErr := ch.SendError(err); sendErr != nil {
			logger.Debug(ctx, "failed to send handler error",
				logger.Action(action),
				zap.Error(sendErr),
			)
		}
	}

	select {
	case <-ch.Done():
		reply, _ := ch.Reply()
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}
