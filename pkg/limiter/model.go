package limiter

import (
	"context"
	"time"
)

// Policy is a named, immutable limit: at most Limit events per Window.
// Policies are defined once at process start and never mutated.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result is the outcome of a single check.
type Result struct {
	// Success reports whether the event was within the limit.
	Success bool
	// Limit echoes the policy limit the check was made against.
	Limit int
	// Remaining is how many events are left in the current window
	// after this check. Never negative.
	Remaining int
	// ResetTime is when the identifier's window elapses and its
	// count starts over.
	ResetTime time.Time
}

// Backend counts events per identifier under a sliding window.
//
// The window for an identifier starts at its first event, not on a
// global clock: identifier A's window boundary is independent of
// identifier B's.
type Backend interface {
	Check(ctx context.Context, identifier string, p Policy) (Result, error)
}
