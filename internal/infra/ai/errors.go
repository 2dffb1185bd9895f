// Task 3.2: Classified error taxonomy for the AI request path.
// Every failure that crosses the router boundary is one of five kinds, so
// the HTTP layer and the client retry shell can make uniform retry and
// status-code decisions. Raw upstream errors never leave this package
// unwrapped.
package ai

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind identifies the classified failure category.
type Kind string

const (
	// KindValidation — the caller's request is malformed. Never retried.
	KindValidation Kind = "validation_error"

	// KindUnauthorized — the caller's identity could not be resolved. Never retried.
	KindUnauthorized Kind = "unauthorized"

	// KindRateLimited — admission control rejected the request. Retry after
	// exactly RetryAfter.
	KindRateLimited Kind = "rate_limited"

	// KindUpstream — one provider failed. Absorbed by the router, which
	// continues to the next provider; surfaced only when it is the sole cause.
	KindUpstream Kind = "upstream_error"

	// KindUnavailable — every configured provider failed (or none are
	// configured). Systemic; surfaced with 503.
	KindUnavailable Kind = "all_providers_unavailable"
)

// ProviderFailure records why one provider in the chain failed.
// Attached to KindUnavailable errors for diagnostics; not shown to end users.
type ProviderFailure struct {
	Provider string
	Reason   string
}

// Error is the classified error carried through the AI request path.
type Error struct {
	Kind       Kind
	Message    string        // Human-safe message matched to the kind.
	RetryAfter time.Duration // Set for KindRateLimited.
	Transient  bool          // Set for KindUpstream: may succeed on another provider or later.
	Provider   string        // Set for KindUpstream: the provider that failed.
	Failures   []ProviderFailure
	Err        error // Wrapped cause. Logged, never serialized to clients.
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("ai: %s (provider %s): %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("ai: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// RateLimited creates a KindRateLimited error carrying the exact wait time.
func RateLimited(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Message:    "rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

// Upstream wraps one provider's failure, tagged transient or permanent.
// Transient: provider-side quota or rate exhaustion, 5xx, timeout.
// Permanent: bad request, failure of the provider's own credentials.
func Upstream(provider string, transient bool, err error) *Error {
	return &Error{
		Kind:      KindUpstream,
		Message:   "upstream provider error",
		Provider:  provider,
		Transient: transient,
		Err:       err,
	}
}

// Unavailable creates a KindUnavailable error carrying the per-provider
// failure list gathered during the fallback scan.
func Unavailable(failures []ProviderFailure) *Error {
	return &Error{
		Kind:     KindUnavailable,
		Message:  "all AI providers are currently unavailable",
		Failures: failures,
	}
}

// KindOf extracts the classified kind from err. Unclassified errors map to
// KindUnavailable so a raw error can never select a misleading 4xx status.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnavailable
}

// IsTransient reports whether err may succeed on a different provider or
// after backoff.
func IsTransient(err error) bool {
	var aiErr *Error
	if !errors.As(err, &aiErr) {
		return false
	}
	switch aiErr.Kind {
	case KindRateLimited, KindUnavailable:
		return true
	case KindUpstream:
		return aiErr.Transient
	default:
		return false
	}
}

// HTTPStatus maps a classified kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
