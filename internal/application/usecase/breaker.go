package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/YouSangSon/reports-service/internal/domain/event"
	"github.com/YouSangSon/reports-service/internal/pkg/circuitbreaker"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"go.uber.org/zap"
)

// newStoreBreaker는 문서 저장소 호출용 circuit breaker를 생성합니다.
// 요청 자체의 문제(없는 문서, 검증 실패, 중복 등)는 실패로 세지 않습니다.
func newStoreBreaker(name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: isStoreHealthy,
		OnStateChange: func(name string, from circuitbreaker.State, to circuitbreaker.State) {
			metrics.GetMetrics().RecordCircuitStateChange(name, to.String())
			logger.Warn(context.Background(), "circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				logger.CircuitState(to.String()),
			)
		},
	})
}

func isStoreHealthy(err error) bool {
	if err == nil {
		return true
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound,
		errors.ErrCodeValidation,
		errors.ErrCodeDuplicateKey,
		errors.ErrCodeForbidden,
		errors.ErrCodeUnauthorized,
		errors.ErrCodeBadRequest:
		return true
	}
	return stderrors.Is(err, context.Canceled)
}

// call은 circuit breaker를 거쳐 저장소를 호출합니다.
// 열린 circuit은 저장소 장애와 같은 SERVICE_UNAVAILABLE로 보고합니다.
func call[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	result, err := circuitbreaker.Execute(ctx, cb, fn)
	if stderrors.Is(err, circuitbreaker.ErrCircuitOpen) || stderrors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return result, errors.StoreUnavailable(err)
	}
	return result, err
}

// publish는 이벤트를 발행합니다. 발행 실패는 요청을 실패시키지 않습니다.
func publish(ctx context.Context, publisher event.Publisher, e event.Event) {
	if err := publisher.Publish(ctx, e); err != nil {
		logger.Warn(ctx, "failed to publish event",
			zap.String("event_type", string(e.Type)),
			logger.DocumentID(e.DocumentID),
			zap.Error(err),
		)
	}
}
