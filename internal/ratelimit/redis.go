package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for an atomic fixed-window check-and-increment. Checking and
// incrementing in one script avoids the race a GET → check → INCR sequence
// would have across instances.
const fixedWindowLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current >= limit then
    return {0, current}
end

local newVal = redis.call("INCR", key)
if newVal == 1 then
    redis.call("EXPIRE", key, ttl)
end

return {1, newVal}
`

// RedisLimiter is a fixed-window per-IP limiter backed by Redis. Window
// expiry is Redis TTL eviction; no request code ever deletes counters.
type RedisLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	script *redis.Script
}

// NewRedisLimiter creates a limiter with a pre-compiled Lua script.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		redis:  client,
		limit:  limit,
		window: window,
		script: redis.NewScript(fixedWindowLuaScript),
	}
}

// Allow atomically counts this arrival against the IP's current window.
// Redis failures fail open: a broken limiter must not take the form down.
func (l *RedisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:contact:%s", ip)

	result, err := l.script.Run(ctx, l.redis,
		[]string{key},
		l.limit,
		int(l.window.Seconds()),
	).Slice()
	if err != nil {
		log.Printf("[RateLimiter] Redis check failed (allowing request): %v", err)
		return true, fmt.Errorf("rate limit check: %w", err)
	}

	allowed := result[0].(int64) == 1
	return allowed, nil
}

// Close closes the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.redis.Close()
}
