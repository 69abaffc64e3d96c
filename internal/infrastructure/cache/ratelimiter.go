package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fixedWindowScript는 키의 카운터를 올리고 첫 요청에서 만료 시간을 설정합니다.
// 반환값: {허용 여부, 남은 요청 수, 남은 TTL(ms)}
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = redis.call('INCR', key)
if current == 1 then
	redis.call('PEXPIRE', key, window)
end

local ttl = redis.call('PTTL', key)
if current > limit then
	return {0, 0, ttl}
end
return {1, limit - current, ttl}
`)

// RateResult는 rate limit 판정 결과입니다
type RateResult struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter는 Redis 기반 fixed-window rate limiter입니다.
// 여러 인스턴스가 같은 Redis를 공유하면 제한도 공유됩니다.
type RateLimiter struct {
	client redis.Scripter
	prefix string
	limit  int64
	window time.Duration
}

// NewRateLimiter는 새로운 rate limiter를 생성합니다
func NewRateLimiter(client redis.Scripter, prefix string, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow는 key에 대한 요청 하나를 허용할지 판정합니다
func (rl *RateLimiter) Allow(ctx context.Context, key string) (RateResult, error) {
	fullKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	values, err := fixedWindowScript.Run(ctx, rl.client, []string{fullKey}, rl.limit, rl.window.Milliseconds()).Int64Slice()
	if err != nil {
		logger.Error(ctx, "rate limit check failed",
			logger.Field("key", fullKey),
			zap.Error(err),
		)
		return RateResult{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(values) != 3 {
		return RateResult{}, fmt.Errorf("rate limit check failed: unexpected script result %v", values)
	}

	result := RateResult{
		Allowed:   values[0] == 1,
		Limit:     rl.limit,
		Remaining: values[1],
	}
	if !result.Allowed {
		result.RetryAfter = time.Duration(values[2]) * time.Millisecond
		if result.RetryAfter <= 0 {
			result.RetryAfter = rl.window
		}
		logger.Debug(ctx, "rate limit exceeded",
			logger.Field("key", fullKey),
			logger.Field("limit", rl.limit),
		)
	}
	return result, nil
}

// Window는 제한 구간 길이를 반환합니다
func (rl *RateLimiter) Window() time.Duration {
	return rl.window
}
