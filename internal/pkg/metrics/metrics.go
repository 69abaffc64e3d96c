package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace는 Init 전에 GetMetrics가 호출될 때 사용하는 네임스페이스입니다
const DefaultNamespace = "reports_service"

// Metrics는 애플리케이션 메트릭을 관리합니다
type Metrics struct {
	// HTTP 메트릭
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 문서 저장소 메트릭
	DBOperationsTotal   *prometheus.CounterVec
	DBOperationDuration *prometheus.HistogramVec
	DBDocumentsReturned *prometheus.HistogramVec

	// 이벤트/보호 장치 메트릭
	EventsPublishedTotal  *prometheus.CounterVec
	RateLimitedTotal      *prometheus.CounterVec
	CircuitBreakerChanges *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	initOnce      sync.Once
)

// Init은 메트릭을 초기화합니다. 기본 레지스트리에 한 번만 등록됩니다.
func Init(namespace string) *Metrics {
	initOnce.Do(func() {
		globalMetrics = newMetrics(namespace)
	})
	return globalMetrics
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),
		DBOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total number of document store operations",
			},
			[]string{"operation", "collection", "status"},
		),
		DBOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_operation_duration_seconds",
				Help:      "Document store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "collection"},
		),
		DBDocumentsReturned: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_documents_returned",
				Help:      "Number of documents returned by aggregation pipelines",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"operation", "collection"},
		),
		EventsPublishedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of domain events published",
			},
			[]string{"topic", "status"},
		),
		RateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
		CircuitBreakerChanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state_changes_total",
				Help:      "Circuit breaker state transitions",
			},
			[]string{"name", "to"},
		),
	}
}

// GetMetrics는 글로벌 메트릭 인스턴스를 반환합니다
func GetMetrics() *Metrics {
	return Init(DefaultNamespace)
}

// RecordHTTPRequest는 HTTP 요청 메트릭을 기록합니다
func (m *Metrics) RecordHTTPRequest(method, endpoint, status string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if responseSize > 0 {
		m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
	}
}

// RecordDBOperation은 문서 저장소 작업 메트릭을 기록합니다
func (m *Metrics) RecordDBOperation(operation, collection, status string, duration time.Duration) {
	m.DBOperationsTotal.WithLabelValues(operation, collection, status).Inc()
	m.DBOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
}

// RecordDocumentsReturned는 pipeline이 반환한 문서 수를 기록합니다
func (m *Metrics) RecordDocumentsReturned(operation, collection string, n int) {
	m.DBDocumentsReturned.WithLabelValues(operation, collection).Observe(float64(n))
}

// RecordEventPublished는 이벤트 발행 결과를 기록합니다
func (m *Metrics) RecordEventPublished(topic, status string) {
	m.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

// RecordRateLimited는 rate limit에 걸린 요청을 기록합니다
func (m *Metrics) RecordRateLimited(scope string) {
	m.RateLimitedTotal.WithLabelValues(scope).Inc()
}

// RecordCircuitStateChange는 circuit breaker 상태 전이를 기록합니다
func (m *Metrics) RecordCircuitStateChange(name, to string) {
	m.CircuitBreakerChanges.WithLabelValues(name, to).Inc()
}
