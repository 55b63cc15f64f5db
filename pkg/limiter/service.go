package limiter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrRedisRequired is returned by New when the process is classified as
// production but no Redis URL is configured. Without a shared store every
// instance would enforce limits independently, which is worse than not
// starting.
var ErrRedisRequired = errors.New("limiter: production requires a Redis URL (set RATELIMIT_REDIS_URL)")

// Config selects the backend. Presence of RedisURL selects the
// distributed backend; absence selects the in-memory backend, except in
// production where it is a startup error.
type Config struct {
	RedisURL    string
	RedisToken  string
	Environment string
}

// ConfigFromEnv reads the backend selection from the environment:
// RATELIMIT_REDIS_URL, RATELIMIT_REDIS_TOKEN and APP_ENV.
func ConfigFromEnv() Config {
	return Config{
		RedisURL:    os.Getenv("RATELIMIT_REDIS_URL"),
		RedisToken:  os.Getenv("RATELIMIT_REDIS_TOKEN"),
		Environment: os.Getenv("APP_ENV"),
	}
}

func (c Config) production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Service is the uniform front for rate limiting. It picks a backend
// exactly once at construction and never swaps it for the life of the
// process. Construct one Service at startup and inject it into route
// handlers; tests construct their own isolated instances.
type Service struct {
	backend     Backend
	distributed bool
	logger      *zap.Logger
	closer      func() error
}

// New builds a Service from cfg.
//
// With a Redis URL it returns a Service on the distributed backend; the
// token, when set, is used as the password. Without one it fails in
// production (ErrRedisRequired) and otherwise falls back to the
// in-memory backend with a warning, since in-memory limits do not hold
// across replicas.
func New(cfg Config, opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.RedisURL == "" {
		if cfg.production() {
			return nil, ErrRedisRequired
		}
		o.logger.Warn("no Redis configured, using in-memory rate limiting; limits are per instance and will not hold across replicas")
		mem := NewMemoryBackend()
		return &Service{
			backend: mem,
			logger:  o.logger,
			closer: func() error {
				mem.Close()
				return nil
			},
		}, nil
	}

	ropts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("limiter: parse redis url: %w", err)
	}
	if cfg.RedisToken != "" {
		ropts.Password = cfg.RedisToken
	}
	client := redis.NewClient(ropts)

	backend, err := NewRedisBackend(client, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &Service{
		backend:     backend,
		distributed: true,
		logger:      o.logger,
		closer:      client.Close,
	}, nil
}

// Distributed reports whether the shared-store backend is active.
func (s *Service) Distributed() bool {
	return s.distributed
}

// Check counts one event for identifier under p. It never returns a
// non-nil error: backends handle their own failures by failing open, and
// should one ever leak an error anyway, Check converts it into the same
// permissive result. Callers only inspect Result.Success.
func (s *Service) Check(ctx context.Context, identifier string, p Policy) (Result, error) {
	res, err := s.backend.Check(ctx, identifier, p)
	if err != nil {
		s.logger.Warn("rate limit backend returned an error, allowing request",
			zap.String("policy", p.Name),
			zap.Error(err))
		return Result{
			Success:   true,
			Limit:     p.Limit,
			Remaining: p.Limit,
			ResetTime: time.Now().Add(p.Window),
		}, nil
	}
	return res, nil
}

// CheckSync checks without a context. It only enforces limits under the
// in-memory backend; the distributed backend cannot be consulted
// synchronously, so there it logs a warning and allows the request.
//
// Deprecated: use Check. This exists for call sites not yet migrated to
// the context-aware contract and hides real limiting when Redis is
// active.
func (s *Service) CheckSync(identifier string, p Policy) Result {
	if s.distributed {
		s.logger.Warn("synchronous rate limit check skipped under distributed backend, request allowed",
			zap.String("policy", p.Name),
			zap.String("identifier", identifier))
		return Result{
			Success:   true,
			Limit:     p.Limit,
			Remaining: p.Limit,
			ResetTime: time.Now().Add(p.Window),
		}
	}
	res, _ := s.backend.Check(context.Background(), identifier, p)
	return res
}

// Close releases the backend's resources (the Redis client or the
// in-memory eviction goroutine).
func (s *Service) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
