package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slotnotify/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "slotnotify:ratelimit:"

var _ notification.RecipientRateLimiter = (*RedisRecipientLimiter)(nil)

// allowScript trims, counts and records in one step so concurrent sends to
// the same recipient cannot both take the last slot.
//
// KEYS[1] window key
// ARGV[1] now (µs), ARGV[2] window (µs), ARGV[3] limit, ARGV[4] member, ARGV[5] ttl (ms)
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return 1
`)

type scriptClient interface {
	redis.Scripter
	Close() error
}

// RedisRecipientLimiter caps sends per recipient over a sliding window.
// Each accepted send is a sorted-set member scored by its timestamp in microseconds.
type RedisRecipientLimiter struct {
	client scriptClient
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisRecipientLimiter connects to Redis and allows maxPerHour sends per recipient.
func NewRedisRecipientLimiter(redisAddr, password string, db int, maxPerHour int) *RedisRecipientLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
	return NewRecipientLimiter(client, maxPerHour)
}

// NewRecipientLimiter creates an hourly limiter over an existing Redis client.
func NewRecipientLimiter(client redis.UniversalClient, maxPerHour int) *RedisRecipientLimiter {
	return newRecipientLimiter(client, maxPerHour, time.Hour, time.Now)
}

func newRecipientLimiter(client scriptClient, limit int, window time.Duration, now func() time.Time) *RedisRecipientLimiter {
	return &RedisRecipientLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Allow reports whether recipient is still under the limit and, if so,
// records this send against the window.
func (r *RedisRecipientLimiter) Allow(ctx context.Context, recipient string) (bool, error) {
	ttl := r.window + time.Minute

	n, err := allowScript.Run(ctx, r.client, []string{Key(recipient)},
		r.now().UnixMicro(),
		r.window.Microseconds(),
		r.limit,
		uuid.NewString(),
		ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("checking recipient rate limit: %w", err)
	}

	return n == 1, nil
}

// Close closes the Redis connection.
func (r *RedisRecipientLimiter) Close() error {
	return r.client.Close()
}

// Key returns the Redis key tracking sends to recipient.
// Addresses are case-insensitive so they share one window.
func Key(recipient string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(recipient))
}
