package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for one rate limited route group
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// Default: client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Reject with 503 instead of falling back to memory when Redis errors
	FailClosed bool
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// userOrIPKey keys authenticated routes by user so a shared NAT does not
// starve its users.
func userOrIPKey(c *gin.Context) string {
	if id, ok := c.Get(string(domain.KeyUserID)); ok {
		return fmt.Sprintf("u:%v", id)
	}
	return c.ClientIP()
}

func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc:   clientIPKey,
	}
}

// AuthRateLimitConfig is the strict config for login, register and
// password reset.
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:auth:",
		FailClosed: true,
		KeyFunc:    clientIPKey,
	}
}

func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     10,
		Window:    time.Minute,
		KeyPrefix: "rl:upload:",
		KeyFunc:   userOrIPKey,
	}
}

type localEntry struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// RateLimiter counts requests in Redis with a fixed window. Without Redis,
// or when Redis errors on a fail-open config, it uses an in-process token
// bucket per key.
type RateLimiter struct {
	client      *goredis.Client
	secLog      *security.SecurityLogger
	local       sync.Map
	cleanupOnce sync.Once
	now         func() time.Time
}

func NewRateLimiter(client *goredis.Client, secLog *security.SecurityLogger) *RateLimiter {
	if secLog == nil {
		secLog = security.NopLogger()
	}
	return &RateLimiter{
		client: client,
		secLog: secLog,
		now:    time.Now,
	}
}

// Middleware creates a rate limiting handler with the given config
func (rl *RateLimiter) Middleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	rl.cleanupOnce.Do(func() { go rl.cleanup(5 * time.Minute) })

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := rl.now()

		var (
			allowed   bool
			remaining int
			resetAt   time.Time
		)

		if rl.client != nil {
			count, reset, err := rl.checkRedis(c.Request.Context(), fullKey, config)
			switch {
			case err == nil:
				allowed = count <= config.Limit
				remaining = config.Limit - count
				resetAt = reset
			case config.FailClosed:
				rl.logRedisError(c, err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			default:
				allowed, remaining, resetAt = rl.checkLocal(fullKey, config, now)
			}
		} else {
			allowed, remaining, resetAt = rl.checkLocal(fullKey, config, now)
		}

		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if !allowed {
			retryAfter := int(math.Ceil(resetAt.Sub(now).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.secLog.LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString(string(domain.KeyRequestID)),
				c.FullPath(),
			)

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRedis checks rate limit using Redis with atomic Lua script
func (rl *RateLimiter) checkRedis(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rl.client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), rl.now().Add(time.Duration(ttl) * time.Second), nil
}

// checkLocal spends one token from the key's bucket. The bucket refills at
// Limit per Window and holds at most Limit tokens.
func (rl *RateLimiter) checkLocal(key string, config RateLimitConfig, now time.Time) (bool, int, time.Time) {
	interval := config.Window / time.Duration(max(config.Limit, 1))
	entryI, _ := rl.local.LoadOrStore(key, &localEntry{
		limiter: rate.NewLimiter(rate.Every(interval), config.Limit),
	})
	entry := entryI.(*localEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)
	missing := float64(config.Limit) - tokens
	if !allowed {
		// Next token, not a full refill, is what the client waits for
		missing = 1 - tokens
	}
	resetAt := now.Add(time.Duration(missing * float64(interval)))

	return allowed, int(math.Floor(tokens)), resetAt
}

// cleanup drops buckets idle for longer than the interval
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := rl.now().Add(-every)
		rl.local.Range(func(key, value interface{}) bool {
			entry := value.(*localEntry)
			entry.mu.Lock()
			if entry.lastSeen.Before(cutoff) {
				rl.local.Delete(key)
			}
			entry.mu.Unlock()
			return true
		})
	}
}

func (rl *RateLimiter) logRedisError(c *gin.Context, err error) {
	rl.secLog.Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   c.GetString(string(domain.KeyRequestID)),
		Details: map[string]interface{}{
			"error_type": "redis_error",
			"error":      err.Error(),
		},
	})
}
