// Package retry는 시작 단계의 외부 의존성 연결(Vault, Kafka)에 사용하는 재시도 유틸리티입니다.
// 문서 저장소 호출 경로에서는 재시도하지 않습니다.
package retry

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

var (
	// ErrMaxRetriesExceeded는 최대 재시도 횟수를 초과했을 때 발생합니다
	ErrMaxRetriesExceeded = stderrors.New("maximum retries exceeded")
)

// Config는 재시도 설정입니다
type Config struct {
	Name                string        // 로그에 표시할 작업 이름
	MaxAttempts         int           // 최대 시도 횟수
	InitialInterval     time.Duration // 초기 대기 시간
	MaxInterval         time.Duration // 최대 대기 시간
	Multiplier          float64       // 대기 시간 증가 배율
	RandomizationFactor float64       // 대기 시간 jitter 비율 (0이면 jitter 없음)
	MaxElapsedTime      time.Duration // 최대 재시도 시간
	// Retryable이 nil이면 IsRetryable을 사용합니다
	Retryable func(err error) bool
}

// DefaultConfig는 기본 재시도 설정입니다
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxAttempts:         5,
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
		MaxElapsedTime:      time.Minute,
	}
}

// RetryableFunc는 재시도 가능한 함수입니다
type RetryableFunc func(ctx context.Context) error

// newBackOff는 설정으로 exponential backoff 정책을 만듭니다
func newBackOff(cfg Config) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.Multiplier = cfg.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.RandomizationFactor = cfg.RandomizationFactor
	b.MaxElapsedTime = cfg.MaxElapsedTime
	b.Reset()
	return b
}

// Do는 함수를 재시도합니다
func Do(ctx context.Context, cfg Config, fn RetryableFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(cfg), uint64(cfg.MaxAttempts-1)),
		ctx,
	)

	attempt := 0
	permanent := false
	operation := func() error {
		attempt++
		err := fn(ctx)
		if err != nil && !retryable(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn(ctx, "operation failed, retrying",
			logger.Operation(cfg.Name),
			logger.Retry(attempt),
			logger.Duration(wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation, policy, notify)
	if err == nil || permanent {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return stderrors.Join(ErrMaxRetriesExceeded, err)
}

// IsRetryable은 일시적인 연결 장애인지 확인합니다
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errors.ErrCodeServiceUnavailable) {
		return true
	}
	if stderrors.Is(err, syscall.ECONNREFUSED) || stderrors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return stderrors.Is(err, context.DeadlineExceeded)
}

// DoWithValue는 값을 반환하는 함수를 재시도합니다
func DoWithValue[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}
