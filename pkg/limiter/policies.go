package limiter

import "time"

// Named policies applied across the API surface. Credential-sensitive
// endpoints get a tight limit, email-triggered flows a long window so a
// mailbox cannot be flooded, and everything else a lenient default.
var policies = map[string]Policy{
	"auth":           {Name: "auth", Limit: 5, Window: time.Minute},
	"password-reset": {Name: "password-reset", Limit: 3, Window: time.Hour},
	"chat":           {Name: "chat", Limit: 20, Window: time.Minute},
	"api":            {Name: "api", Limit: 100, Window: time.Minute},
}

// PolicyByName looks up a named policy.
func PolicyByName(name string) (Policy, bool) {
	p, ok := policies[name]
	return p, ok
}

// Policies returns all named policies.
func Policies() []Policy {
	out := make([]Policy, 0, len(policies))
	for _, p := range policies {
		out = append(out, p)
	}
	return out
}
