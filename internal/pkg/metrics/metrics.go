package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics는 애플리케이션 메트릭을 관리합니다
type Metrics struct {
	// 샤드 bulk 쓰기 메트릭
	ShardBulkRequestsTotal *prometheus.CounterVec
	ShardBulkLatency       *prometheus.HistogramVec
	ShardBulkItemsTotal    *prometheus.CounterVec
	ShardBulkItemsPerReq   *prometheus.HistogramVec

	// 인터셉션 메트릭
	InterceptionDecisions *prometheus.CounterVec
	SinkEmitFailures      *prometheus.CounterVec

	// gRPC 메트릭
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec

	// HTTP 메트릭
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	globalMetrics *Metrics
	globalMu      sync.Mutex
)

// Init은 기본 레지스트리에 메트릭을 등록하고 글로벌 인스턴스로 설정합니다
func Init(namespace string) *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}
	globalMetrics = New(namespace, prometheus.DefaultRegisterer)
	return globalMetrics
}

// New는 주어진 레지스트리에 메트릭을 등록합니다
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ShardBulkRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shard_bulk_requests_total",
				Help:      "Total number of replicated shard bulk requests that completed",
			},
			[]string{"index", "shard", "role", "outcome"},
		),
		ShardBulkLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "shard_bulk_latency_seconds",
				Help:      "Time between channel wrap and reply dispatch for shard bulk requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"index", "shard", "role"},
		),
		ShardBulkItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shard_bulk_items_total",
				Help:      "Total number of individual write operations carried by shard bulk requests",
			},
			[]string{"index", "shard", "role"},
		),
		ShardBulkItemsPerReq: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "shard_bulk_items_per_request",
				Help:      "Number of items batched in a single shard bulk request",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"role"},
		),
		InterceptionDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interception_decisions_total",
				Help:      "Classification decisions taken by the request interceptor",
			},
			[]string{"decision"},
		),
		SinkEmitFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_emit_failures_total",
				Help:      "Timing records dropped because a sink failed",
			},
			[]string{"sink"},
		),
		GRPCRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),
		GRPCRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "gRPC request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// GetMetrics는 글로벌 메트릭 인스턴스를 반환합니다
func GetMetrics() *Metrics {
	return Init("shardwatch")
}

// RecordShardBulk는 완료된 샤드 bulk 요청 한 건을 기록합니다
func (m *Metrics) RecordShardBulk(index string, shard int, role string, items int, elapsed time.Duration, failed bool) {
	shardLabel := strconv.Itoa(shard)
	outcome := "success"
	if failed {
		outcome = "failure"
	}

	m.ShardBulkRequestsTotal.WithLabelValues(index, shardLabel, role, outcome).Inc()
	m.ShardBulkLatency.WithLabelValues(index, shardLabel, role).Observe(elapsed.Seconds())
	m.ShardBulkItemsTotal.WithLabelValues(index, shardLabel, role).Add(float64(items))
	m.ShardBulkItemsPerReq.WithLabelValues(role).Observe(float64(items))
}

// RecordDecision은 인터셉터의 분류 결과를 기록합니다
func (m *Metrics) RecordDecision(decision string) {
	m.InterceptionDecisions.WithLabelValues(decision).Inc()
}

// RecordSinkFailure는 버려진 레코드를 기록합니다
func (m *Metrics) RecordSinkFailure(sink string) {
	m.SinkEmitFailures.WithLabelValues(sink).Inc()
}

// RecordGRPCRequest는 gRPC 요청 메트릭을 기록합니다
func (m *Metrics) RecordGRPCRequest(method, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordHTTPRequest는 HTTP 요청 메트릭을 기록합니다
func (m *Metrics) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
