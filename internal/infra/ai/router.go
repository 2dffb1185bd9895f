// Task 3.3: Fallback router.
// Router tries providers in fixed priority order and returns the first
// normalized success. It is stateless between requests — the only shared
// mutable state on the request path lives in the rate limiter's buckets.
package ai

import (
	"context"
	"log/slog"
)

// Router iterates an immutable, priority-ordered provider chain.
// Construct it once at process start with the configured providers;
// unconfigured providers must not be passed in (they are skipped upstream
// without counting as failures).
type Router struct {
	providers []Provider
	logger    *slog.Logger
}

// NewRouter creates a Router over the given priority-ordered providers.
// The slice is copied so the caller cannot mutate the chain after init.
func NewRouter(providers []Provider, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	ps := make([]Provider, len(providers))
	copy(ps, providers)
	return &Router{providers: ps, logger: logger}
}

// Providers returns the chain in priority order (copy, read-only use).
// The status endpoint probes these in parallel.
func (r *Router) Providers() []Provider {
	ps := make([]Provider, len(r.providers))
	copy(ps, r.providers)
	return ps
}

// Route walks the provider chain: first success wins, every failure —
// transient or permanent — logs and continues, since another provider may
// still answer. A reply with no primary text is a normalization failure
// and continues the scan too. When the whole chain is exhausted the
// per-provider reasons are attached to the returned KindUnavailable error
// for diagnostics.
func (r *Router) Route(ctx context.Context, req Request) (*Envelope, error) {
	if len(r.providers) == 0 {
		r.logger.Warn("ai route: no providers configured")
		return nil, Unavailable(nil)
	}

	var failures []ProviderFailure
	for _, p := range r.providers {
		res, err := p.Complete(ctx, req)
		if err != nil {
			r.logger.Warn("ai provider failed",
				slog.String("provider", p.Name()),
				slog.String("kind", string(KindOf(err))),
				slog.Bool("transient", IsTransient(err)),
				slog.String("error", err.Error()),
			)
			failures = append(failures, ProviderFailure{Provider: p.Name(), Reason: err.Error()})
			continue
		}

		env, normErr := Normalize(p.Name(), res)
		if normErr != nil {
			r.logger.Warn("ai provider returned unusable result",
				slog.String("provider", p.Name()),
				slog.String("error", normErr.Error()),
			)
			failures = append(failures, ProviderFailure{Provider: p.Name(), Reason: normErr.Error()})
			continue
		}
		return env, nil
	}

	r.logger.Error("ai route: all providers exhausted",
		slog.Int("providers", len(r.providers)),
		slog.Int("failures", len(failures)),
	)
	return nil, Unavailable(failures)
}
