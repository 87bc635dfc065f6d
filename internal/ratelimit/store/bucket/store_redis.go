package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docverify/internal/ratelimit/models"
)

// slidingWindowScript trims the sorted set to the window, admits the request
// when there is room and returns {allowed, count, reset_ms}. Scores are unix
// milliseconds.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisStore shares sliding windows across gateway instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:", now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (models.Result, error) {
	now := s.now().UnixMilli()
	raw, err := slidingWindowScript.Run(ctx, s.client, []string{s.prefix + key},
		now, window.Milliseconds(), limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return models.Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 3 {
		return models.Result{}, fmt.Errorf("rate limit script returned %d values", len(raw))
	}

	res := models.Result{
		Allowed: raw[0] == 1,
		Limit:   limit,
		ResetAt: time.UnixMilli(raw[2]),
	}
	if res.Allowed {
		res.Remaining = limit - int(raw[1])
	}
	return res, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
