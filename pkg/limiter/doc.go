// Package limiter provides local and distributed rate limiting based on
// a sliding-window counter.
//
// The primary entry point is the Service facade:
//
//	svc, err := limiter.New(limiter.ConfigFromEnv())
//	res, _ := svc.Check(ctx, id, policy)
//
// The returned Result contains whether the request is allowed, how many
// requests remain in the identifier's window, and the absolute time the
// window resets, ready to be turned into rate-limit headers.
//
// # Overview
//
// Each identifier gets a fixed quota of Limit requests per Window. The
// window starts at the identifier's first request, not on a global
// clock, and the count resets exactly once when it elapses. Requests
// beyond the quota are rejected without extending the window, so a
// client that keeps hammering a closed window does not push its own
// reset further away.
//
// # Core Types
//
// Policy defines the quota:
//
//   - Name: the label routes reference ("auth", "api", ...)
//   - Limit: how many requests are allowed per window
//   - Window: how long the window lasts
//
// The package ships a fixed table of named policies; look them up with
// PolicyByName.
//
// # Backends
//
// Two implementations share the Backend interface:
//
//   - MemoryBackend: an in-process counter behind a mutex, with a
//     background goroutine evicting expired entries. State is local to
//     the process, so it cannot enforce a global limit across replicas.
//
//   - RedisBackend: a counter in a shared Redis, written through a Lua
//     script so the count/compare/increment cycle is atomic on the
//     server. Safe across any number of application instances; Redis is
//     the single source of truth and keys expire on their own, so there
//     is no deletion path to race with.
//
// The Service facade picks between them exactly once at startup:
// a configured Redis URL selects RedisBackend; no URL selects
// MemoryBackend with a warning, except in production where it is a
// configuration error (every instance limiting independently is worse
// than refusing to start).
//
// # Failure Policy
//
// RedisBackend fails open. A Redis outage, timeout or malformed reply
// yields Success=true with a full Remaining budget, and the error goes
// to the log and the metrics recorder instead of the caller. Service.Check
// therefore never returns a non-nil error; callers only inspect
// Result.Success.
//
// # Concurrency
//
// MemoryBackend guards its map with a mutex and is safe for concurrent
// use. RedisBackend does no client-side locking at all: ordering of
// concurrent checks for one identifier is delegated entirely to the
// atomicity of the server-side script.
//
// # Granularity
//
// Redis windows operate on whole seconds. Policies with sub-second
// windows are rounded up to one second on the distributed path, never
// down.
//
// # Configuration
//
// RedisBackend and Service accept functional options:
//
//   - WithKeyPrefix(string): key prefix in Redis (default "ratelimit:")
//   - WithTimeout(time.Duration): per-check Redis timeout (default 5s)
//   - WithRecorder(Recorder): metrics backend
//   - WithLogger(*zap.Logger): structured logger (default no-op)
//
// # HTTP Integration
//
// ClientIdentifier derives the per-caller key from request headers
// (X-Forwarded-For first hop, then X-Real-IP, then a shared anonymous
// bucket), and Headers renders a Result as X-RateLimit-Limit,
// X-RateLimit-Remaining, X-RateLimit-Reset and, on rejection,
// Retry-After. The middleware package wires both into net/http.
package limiter
