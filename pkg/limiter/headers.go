package limiter

import (
	"math"
	"strconv"
	"time"
)

// Headers renders a check result as the standard rate-limit response
// headers. Retry-After is present only on rejection, in whole seconds,
// never negative.
func Headers(r Result) map[string]string {
	h := map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(r.Limit),
		"X-RateLimit-Remaining": strconv.Itoa(r.Remaining),
		"X-RateLimit-Reset":     r.ResetTime.UTC().Format(time.RFC3339),
	}
	if !r.Success {
		retry := int(math.Ceil(time.Until(r.ResetTime).Seconds()))
		if retry < 0 {
			retry = 0
		}
		h["Retry-After"] = strconv.Itoa(retry)
	}
	return h
}
