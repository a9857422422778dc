package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter caps uploads per user per day using a redis sliding window.
type UploadLimiter struct {
	client    *goredis.Client
	maxPerDay int
	now       func() time.Time
}

// KEYS[1] = key, ARGV = limit, window seconds, now. Returns 1 if allowed.
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

func NewUploadLimiter(client *goredis.Client, perDay int) *UploadLimiter {
	if perDay <= 0 {
		perDay = 100
	}
	return &UploadLimiter{client: client, maxPerDay: perDay, now: time.Now}
}

// Allow reports whether userID may upload now. Without redis every upload
// is allowed.
func (ul *UploadLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if ul.client == nil {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:upload:user:%s", userID)
	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, ul.maxPerDay, 86400, ul.now().Unix()).Result()
	if err != nil {
		return false, fmt.Errorf("upload limit check failed: %w", err)
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from upload limit script")
	}
	return allowed == 1, nil
}
