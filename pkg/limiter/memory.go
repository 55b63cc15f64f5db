package limiter

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryBackend is an in-process sliding-window counter.
//
// It is safe for concurrent use by multiple goroutines, but its state is
// local to the process and is not shared across replicas. Use
// RedisBackend when a single global limit must hold across instances.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*entry

	janitor *time.Ticker
	done    chan struct{}
}

// NewMemoryBackend constructs a MemoryBackend with empty state and
// starts its eviction goroutine. Call Close to stop it.
func NewMemoryBackend() *MemoryBackend {
	m := &MemoryBackend{
		entries: make(map[string]*entry),
		janitor: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
	}
	go m.sweep()
	return m
}

func (m *MemoryBackend) sweep() {
	for {
		select {
		case <-m.done:
			return
		case <-m.janitor.C:
			m.evict(time.Now())
		}
	}
}

// evict drops every expired entry. Correctness never depends on it:
// Check already treats an expired entry as absent. It only bounds
// memory growth from identifiers that stopped sending requests.
func (m *MemoryBackend) evict(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, key)
		}
	}
}

// Close stops the eviction goroutine.
func (m *MemoryBackend) Close() {
	m.janitor.Stop()
	close(m.done)
}

// Check counts one event for identifier under p. It never returns an
// error and never blocks on I/O.
func (m *MemoryBackend) Check(ctx context.Context, identifier string, p Policy) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	e, ok := m.entries[identifier]
	if !ok || now.After(e.resetAt) {
		resetAt := now.Add(p.Window)
		m.entries[identifier] = &entry{count: 1, resetAt: resetAt}
		return Result{Success: true, Limit: p.Limit, Remaining: p.Limit - 1, ResetTime: resetAt}, nil
	}

	if e.count >= p.Limit {
		// Rejected events do not extend the window or distort the count.
		return Result{Success: false, Limit: p.Limit, Remaining: 0, ResetTime: e.resetAt}, nil
	}

	e.count++
	return Result{Success: true, Limit: p.Limit, Remaining: p.Limit - e.count, ResetTime: e.resetAt}, nil
}
