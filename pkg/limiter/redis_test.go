package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisBackend(t *testing.T, opts ...Option) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	b, err := NewRedisBackend(client, opts...)
	require.NoError(t, err)
	return b, mr
}

func TestNewRedisBackend_NilClient(t *testing.T) {
	_, err := NewRedisBackend(nil)
	assert.Error(t, err)
}

func TestRedisBackend_RemainingCountsDown(t *testing.T) {
	b, _ := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 5, Window: time.Minute}

	for i := 1; i <= 5; i++ {
		res, err := b.Check(context.Background(), "u1", p)
		require.NoError(t, err)
		assert.True(t, res.Success, "call %d should be allowed", i)
		assert.Equal(t, 5-i, res.Remaining, "call %d", i)
	}
}

func TestRedisBackend_RejectionIsIdempotent(t *testing.T) {
	b, mr := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		res, _ := b.Check(context.Background(), "u1", p)
		require.True(t, res.Success)
	}

	for i := 0; i < 3; i++ {
		res, err := b.Check(context.Background(), "u1", p)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, 0, res.Remaining)
	}

	// The stored count must not have grown past the limit.
	got, err := mr.Get("ratelimit:2:60:u1")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRedisBackend_WindowResets(t *testing.T) {
	b, mr := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		res, _ := b.Check(context.Background(), "u1", p)
		require.True(t, res.Success)
	}
	res, _ := b.Check(context.Background(), "u1", p)
	require.False(t, res.Success)

	mr.FastForward(61 * time.Second)

	res, err := b.Check(context.Background(), "u1", p)
	require.NoError(t, err)
	assert.True(t, res.Success, "expired window should behave like a fresh one")
	assert.Equal(t, 1, res.Remaining)
}

func TestRedisBackend_IdentifiersAreIsolated(t *testing.T) {
	b, _ := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 1, Window: time.Minute}

	res, _ := b.Check(context.Background(), "u1", p)
	require.True(t, res.Success)
	res, _ = b.Check(context.Background(), "u1", p)
	require.False(t, res.Success)

	res, _ = b.Check(context.Background(), "u2", p)
	assert.True(t, res.Success, "u2 must not be affected by u1's count")
}

func TestRedisBackend_FailOpen(t *testing.T) {
	b, mr := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 2, Window: time.Minute}

	// Exhaust the quota, then take Redis away.
	for i := 0; i < 3; i++ {
		b.Check(context.Background(), "u1", p)
	}
	mr.Close()

	res, err := b.Check(context.Background(), "u1", p)
	require.NoError(t, err, "a store failure must not surface as an error")
	assert.True(t, res.Success, "fail open is unconditional, even for an exhausted identifier")
	assert.Equal(t, p.Limit, res.Remaining)
	assert.True(t, res.ResetTime.After(time.Now()))
}

func TestRedisBackend_WindowCache(t *testing.T) {
	b, _ := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 5, Window: time.Minute}

	b.Check(context.Background(), "u1", p)
	b.Check(context.Background(), "u2", p)
	assert.Len(t, b.windows, 1, "same (limit, window) shape must reuse one cached window")

	b.Check(context.Background(), "u1", Policy{Name: "api", Limit: 100, Window: time.Minute})
	assert.Len(t, b.windows, 2)
}

func TestRedisBackend_SubSecondWindowRoundsUp(t *testing.T) {
	b, _ := newTestRedisBackend(t)
	w := b.window(Policy{Name: "fast", Limit: 10, Window: 250 * time.Millisecond})
	assert.Equal(t, 1, w.seconds, "sub-second windows round up, never to zero")
}

func TestRedisBackend_SixCheckScenario(t *testing.T) {
	b, _ := newTestRedisBackend(t)
	p := Policy{Name: "auth", Limit: 5, Window: time.Minute}

	wantSuccess := []bool{true, true, true, true, true, false}
	wantRemaining := []int{4, 3, 2, 1, 0, 0}

	for i := 0; i < 6; i++ {
		res, err := b.Check(context.Background(), "u1", p)
		require.NoError(t, err)
		assert.Equal(t, wantSuccess[i], res.Success, "call %d", i+1)
		assert.Equal(t, wantRemaining[i], res.Remaining, "call %d", i+1)
	}
}
