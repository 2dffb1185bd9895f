// Task 6.3: Per-class rate-limit middleware.
// Wraps route groups with a fixed-window admission check. AI and generation
// quotas are enforced deeper in the assistant service (after validation, so
// malformed requests never burn quota); this middleware covers the general
// and admin classes where admission happens before any handler work.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/zeekylabs/zeeky/internal/api/ctxkeys"
	"github.com/zeekylabs/zeeky/internal/infra/ratelimit"
)

// RateLimit returns a middleware enforcing the given class's policy.
// The bucket key is the caller id when the class is configured per-caller
// and a caller identity is present, otherwise the remote address.
func RateLimit(limiter *ratelimit.Limiter, class ratelimit.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := remoteIP(r)
			if limiter.Policy(class).KeyByCaller {
				if callerID := ctxkeys.Value(r.Context(), ctxkeys.CallerID); callerID != "" {
					key = callerID
				}
			}

			decision := limiter.Admit(class, key)
			if !decision.Allowed {
				writeTooManyRequests(w, decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeTooManyRequests writes a 429 JSON response with a Retry-After hint.
func writeTooManyRequests(w http.ResponseWriter, decision ratelimit.Decision) {
	retryAfter := int(decision.RetryAfter / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"error":      "rate limit exceeded, slow down",
		"code":       "rate_limited",
		"retryAfter": retryAfter,
	})
}
