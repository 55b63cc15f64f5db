// Package middleware adapts the limiter to net/http handler chains.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/coursebase/ratelimit/pkg/limiter"
)

// Config wires a policy to a handler chain.
type Config struct {
	Service *limiter.Service
	Policy  limiter.Policy

	// KeyFunc overrides how the identifier is derived. Defaults to
	// limiter.ClientIdentifier on the request headers.
	KeyFunc func(*http.Request) string

	// OnLimit overrides the rejection response. Defaults to a JSON 429.
	OnLimit func(http.ResponseWriter, *http.Request)
}

// RateLimit checks every request against cfg.Policy, sets the
// X-RateLimit-* headers on all responses, and answers 429 when the
// quota is exhausted.
func RateLimit(cfg Config) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(r *http.Request) string {
			return limiter.ClientIdentifier(r.Header)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, _ := cfg.Service.Check(r.Context(), cfg.KeyFunc(r), cfg.Policy)
			for k, v := range limiter.Headers(res) {
				w.Header().Set(k, v)
			}

			if !res.Success {
				if cfg.OnLimit != nil {
					cfg.OnLimit(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded. Try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
