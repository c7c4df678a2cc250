package service

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisclient "github.com/medvault/share-server-go/internal/redis"
)

// slidingWindowScript counts hits in a sliding window and admits or rejects
// the current one atomically. Returns {allowed, resetAt}.
var slidingWindowScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

if redis.call('ZCARD', key) >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = now + window
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)
return {1, now + window}
`)

// RateLimiter enforces per-key request ceilings over a sliding window.
// Login and redemption endpoints share one instance with different keys.
type RateLimiter struct {
	client *redisclient.Client
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *redisclient.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow reports whether one more request fits under the limit, and when the
// window resets if it does not. Redis trouble denies the request; brute-force
// protection must not fail open.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Time) {
	now := time.Now().Unix()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := slidingWindowScript.Run(
		ctx, rl.client.Client,
		[]string{fullKey},
		now, int64(window.Seconds()), limit,
	).Int64Slice()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit check failed, denying request")
		return false, time.Now().Add(window)
	}
	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit script result, denying request")
		return false, time.Now().Add(window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}
