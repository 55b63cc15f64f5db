package limiter

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	prefix   string
	timeout  time.Duration
	recorder Recorder
	logger   *zap.Logger
}

func defaultOptions() options {
	return options{
		prefix:   "ratelimit:",
		timeout:  5 * time.Second,
		recorder: NopRecorder{},
		logger:   zap.NewNop(),
	}
}

// Option configures a Service or RedisBackend.
type Option func(*options)

// WithKeyPrefix sets the prefix for keys written to Redis
// (default "ratelimit:").
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithTimeout bounds each Redis round trip (default 5s). A check that
// exceeds it fails open.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRecorder injects a metrics backend.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithLogger injects a logger (default no-op).
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
