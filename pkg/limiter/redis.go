package limiter

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//go:embed sliding_window.lua
var slidingWindowScript string

// RedisBackend is a sliding-window counter backed by a shared Redis, so
// every application instance enforces the same global budget per
// identifier. The count/compare/increment cycle runs inside a single Lua
// script; the backend never does a separate read-then-write and never
// locks on the client side.
//
// Failure policy: fail open. Any Redis error, including a timeout, is
// converted into a permissive Result rather than returned to the caller.
// A broken limiter must never become an outage for the rest of the API.
type RedisBackend struct {
	client   *redis.Client
	script   *redis.Script
	prefix   string
	timeout  time.Duration
	recorder Recorder
	logger   *zap.Logger

	mu      sync.Mutex
	windows map[string]*window
}

// window is the cached limiter for one (limit, windowSeconds) pair.
// Checks against the same policy shape reuse it instead of recomputing
// key material per call.
type window struct {
	limit     int
	seconds   int
	keyPrefix string
}

// NewRedisBackend constructs a RedisBackend on an existing client.
//
// The client is pinged once so an unreachable Redis shows up in the logs
// at startup, but an unreachable Redis is not an error: checks fail open
// until it recovers.
func NewRedisBackend(client *redis.Client, opts ...Option) (*RedisBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("limiter: redis client is required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		o.logger.Warn("redis unreachable, rate limit checks will fail open until it recovers",
			zap.Error(err))
	}

	return &RedisBackend{
		client:   client,
		script:   redis.NewScript(slidingWindowScript),
		prefix:   o.prefix,
		timeout:  o.timeout,
		recorder: o.recorder,
		logger:   o.logger,
		windows:  make(map[string]*window),
	}, nil
}

// window returns the cached limiter for p's (limit, windowSeconds)
// shape, creating it on first use. The window is rounded up to whole
// seconds; rounding down could turn a sub-second window into no window
// at all.
func (b *RedisBackend) window(p Policy) *window {
	seconds := int(math.Ceil(p.Window.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	key := strconv.Itoa(p.Limit) + ":" + strconv.Itoa(seconds)

	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[key]
	if !ok {
		w = &window{
			limit:     p.Limit,
			seconds:   seconds,
			keyPrefix: b.prefix + key + ":",
		}
		b.windows[key] = w
	}
	return w
}

// Check counts one event for identifier under p against the shared
// store. The call is bounded by the configured timeout; on any store
// error it returns the fail-open result with a nil error.
func (b *RedisBackend) Check(ctx context.Context, identifier string, p Policy) (Result, error) {
	w := b.window(p)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	reply, err := b.script.Run(ctx, b.client, []string{w.keyPrefix + identifier}, w.limit, w.seconds).Result()
	b.recorder.Observe("ratelimit.redis.duration_ms", float64(time.Since(start).Milliseconds()),
		map[string]string{"policy": p.Name})
	if err != nil {
		return b.failOpen(p, err), nil
	}

	values, ok := reply.([]interface{})
	if !ok || len(values) != 3 {
		return b.failOpen(p, fmt.Errorf("unexpected script reply %T", reply)), nil
	}

	allowed := toInt64(values[0]) == 1
	remaining := int(toInt64(values[1]))
	ttl := time.Duration(toInt64(values[2])) * time.Second
	if ttl <= 0 {
		ttl = time.Duration(w.seconds) * time.Second
	}

	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	b.recorder.Add("ratelimit."+outcome, 1, map[string]string{"policy": p.Name})

	return Result{
		Success:   allowed,
		Limit:     p.Limit,
		Remaining: remaining,
		ResetTime: time.Now().Add(ttl),
	}, nil
}

func (b *RedisBackend) failOpen(p Policy, err error) Result {
	b.logger.Warn("rate limit check failed, allowing request",
		zap.String("policy", p.Name),
		zap.Error(err))
	b.recorder.Add("ratelimit.fail_open", 1, map[string]string{"policy": p.Name})
	return Result{
		Success:   true,
		Limit:     p.Limit,
		Remaining: p.Limit,
		ResetTime: time.Now().Add(p.Window),
	}
}

func toInt64(val interface{}) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
