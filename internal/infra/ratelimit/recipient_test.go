package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// windowScripter evaluates the allow script against in-memory sorted sets.
type windowScripter struct {
	mu      sync.Mutex
	members map[string]map[string]int64
	ttls    map[string]int64
	evals   int
	err     error
}

func newWindowScripter() *windowScripter {
	return &windowScripter{
		members: make(map[string]map[string]int64),
		ttls:    make(map[string]int64),
	}
}

func (s *windowScripter) run(keys []string, args []any) *redis.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evals++
	if s.err != nil {
		return redis.NewCmdResult(nil, s.err)
	}
	if len(keys) != 1 || len(args) != 5 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script call: keys=%v args=%v", keys, args))
	}

	key := keys[0]
	now := args[0].(int64)
	window := args[1].(int64)
	limit := args[2].(int)
	member := args[3].(string)

	set := s.members[key]
	if set == nil {
		set = make(map[string]int64)
		s.members[key] = set
	}
	for m, score := range set {
		if score <= now-window {
			delete(set, m)
		}
	}
	if len(set) >= limit {
		return redis.NewCmdResult(int64(0), nil)
	}

	set[member] = now
	s.ttls[key] = args[4].(int64)
	return redis.NewCmdResult(int64(1), nil)
}

func (s *windowScripter) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return s.run(keys, args)
}

func (s *windowScripter) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return s.run(keys, args)
}

func (s *windowScripter) EvalRO(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return s.run(keys, args)
}

func (s *windowScripter) EvalShaRO(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return s.run(keys, args)
}

func (s *windowScripter) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (s *windowScripter) ScriptLoad(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func (s *windowScripter) Close() error { return nil }

func (s *windowScripter) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members[key])
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestKey(t *testing.T) {
	assert.Equal(t, "slotnotify:ratelimit:a@b.com", Key("a@b.com"))
	assert.Equal(t, Key("a@b.com"), Key("  A@B.com "))
}

func TestAllow_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	scripter := newWindowScripter()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	limiter := newRecipientLimiter(scripter, 3, time.Hour, clock.Now)

	for i := range 3 {
		allowed, err := limiter.Allow(ctx, "a@b.com")
		require.NoError(t, err)
		assert.True(t, allowed, "send %d", i+1)
		clock.Advance(10 * time.Minute)
	}

	allowed, err := limiter.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, allowed, "fourth send within the hour")
	assert.Equal(t, 3, scripter.count(Key("a@b.com")), "denied sends are not recorded")

	allowed, err = limiter.Allow(ctx, "other@b.com")
	require.NoError(t, err)
	assert.True(t, allowed, "recipients have separate windows")

	// The first send leaves the window an hour after it was made.
	clock.Advance(30 * time.Minute)
	allowed, err = limiter.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAllow_CaseInsensitiveRecipient(t *testing.T) {
	ctx := context.Background()
	scripter := newWindowScripter()
	limiter := newRecipientLimiter(scripter, 1, time.Hour, time.Now)

	allowed, err := limiter.Allow(ctx, "A@B.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, " a@b.com ")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAllow_SingleRoundTrip(t *testing.T) {
	scripter := newWindowScripter()
	limiter := newRecipientLimiter(scripter, 5, time.Hour, time.Now)

	_, err := limiter.Allow(context.Background(), "a@b.com")
	require.NoError(t, err)

	assert.Equal(t, 1, scripter.evals)
	assert.Equal(t, (time.Hour + time.Minute).Milliseconds(), scripter.ttls[Key("a@b.com")])
}

func TestAllow_ConcurrentSendsRespectLimit(t *testing.T) {
	scripter := newWindowScripter()
	limiter := newRecipientLimiter(scripter, 5, time.Hour, time.Now)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Allow(context.Background(), "a@b.com")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
}

func TestAllow_ScriptError(t *testing.T) {
	scripter := newWindowScripter()
	scripter.err = errors.New("READONLY You can't write against a read only replica.")
	limiter := newRecipientLimiter(scripter, 5, time.Hour, time.Now)

	allowed, err := limiter.Allow(context.Background(), "a@b.com")

	assert.False(t, allowed)
	assert.ErrorContains(t, err, "checking recipient rate limit")
}

func TestAllow_RedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	limiter := NewRecipientLimiter(client, 5)
	t.Cleanup(func() { _ = limiter.Close() })

	allowed, err := limiter.Allow(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.False(t, allowed)
}
