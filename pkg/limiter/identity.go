package limiter

import (
	"net/http"
	"strings"
)

// DefaultIdentifier is the bucket for requests that carry no usable
// client address. Pooling unattributable traffic into one shared bucket
// beats rejecting it outright.
const DefaultIdentifier = "anonymous"

// ClientIdentifier derives the rate-limit key for a request from its
// headers: the first X-Forwarded-For hop (the entry closest to the
// original client; the rest of the chain is proxies), then X-Real-IP,
// then DefaultIdentifier. It never fails on malformed input.
func ClientIdentifier(h http.Header) string {
	if fwd := h.Get("X-Forwarded-For"); fwd != "" {
		first := fwd
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			first = fwd[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(h.Get("X-Real-IP")); real != "" {
		return real
	}
	return DefaultIdentifier
}
