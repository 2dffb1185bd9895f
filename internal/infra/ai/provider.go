// Task 3.1: Provider interface.
// Adapters (OpenAI, Anthropic, Ollama, Lorem) implement this interface so
// the router is never coupled to a specific AI vendor.
package ai

import "context"

// Provider is the uniform adapter contract for one upstream AI service.
//
// Complete must honor ctx cancellation, bound every outbound call with a
// timeout, and classify every failure as an *Error with KindUpstream
// (transient or permanent). It performs no shared state mutation.
type Provider interface {
	// Name returns the provider identifier ("openai", "anthropic", ...).
	Name() string

	// Complete performs a non-streaming chat completion.
	Complete(ctx context.Context, req Request) (*Result, error)

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
