// Task 6.2: Bearer token AuthMiddleware
// Reads Authorization: Bearer <token>, validates it, injects caller_id +
// trust_level into context. Failed validations consume auth-class quota so
// repeated bad credentials from one address get throttled.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/zeekylabs/zeeky/internal/api/ctxkeys"
	"github.com/zeekylabs/zeeky/internal/infra/ratelimit"
	pkgauth "github.com/zeekylabs/zeeky/pkg/auth"
)

// AuthMiddleware validates the Bearer token and injects claims into context.
// Used on all /ai/* and /admin/* routes; /health stays public.
//
// Flow:
//  1. Check the auth failure budget for the remote address → 429 when exhausted
//  2. Read "Authorization: Bearer <token>" header
//  3. Reject if missing or not Bearer scheme → 401, counts against the budget
//  4. Parse + validate token → 401 on invalid/expired, counts against the budget
//  5. Inject ctxkeys.CallerID and ctxkeys.TrustLevel into context
//  6. Call next handler
func AuthMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := remoteIP(r)

			// Auth class counts failures only, so Admit here is a pure
			// threshold check and consumes nothing on success.
			decision := limiter.Admit(ratelimit.ClassAuth, key)
			if !decision.Allowed {
				writeTooManyRequests(w, decision)
				return
			}

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				limiter.RecordFailure(ratelimit.ClassAuth, key)
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}

			claims, err := pkgauth.ParseToken(tokenString)
			if err != nil {
				limiter.RecordFailure(ratelimit.ClassAuth, key)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			// Inject claims into context using typed keys (prevents collision)
			ctx := r.Context()
			ctx = ctxkeys.WithValue(ctx, ctxkeys.CallerID, claims.CallerID)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.TrustLevel, claims.TrustLevel)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if header is missing, wrong scheme, or token is empty.
// Extracted for testability and to reduce cyclomatic complexity of AuthMiddleware.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	token := strings.TrimPrefix(header, prefix)
	token = strings.TrimSpace(token)
	return token
}

// remoteIP returns the client address without the port. Sits behind
// chi's middleware.RealIP, which already folds X-Forwarded-For into
// RemoteAddr when present.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeUnauthorized writes a 401 JSON response.
// Uses consistent format with writeError in handlers package.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"}) //nolint:errcheck
}
