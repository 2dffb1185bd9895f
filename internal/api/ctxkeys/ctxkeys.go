// Task 6.1: Shared context keys for the API layer.
// Extracted to a leaf package to avoid import cycles between api and api/handlers.
package ctxkeys

import "context"

// Key is the unexported named type for all API context keys.
// Using a named type avoids collisions with string keys from other packages
// at runtime (context.Value compares both type and value).
type Key string

const (
	// CallerID is the context key for the authenticated caller.
	// Injected by AuthMiddleware from token claims, read by every handler
	// and by the caller-keyed rate-limit middleware.
	CallerID Key = "caller_id"

	// TrustLevel is the context key for the caller's trust level.
	// Injected by AuthMiddleware, read by the admin surface.
	TrustLevel Key = "trust_level"
)

// WithValue adds a ctxkeys.Key value to the context.
// Helper used by AuthMiddleware to inject claims using typed keys.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// Value reads a ctxkeys.Key string value from the context.
// Returns "" when the key is absent or holds a non-string.
func Value(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
