// Package ai defines the provider abstraction and fallback routing for
// Zeeky's AI request path (Task 3.1). All types here are shared between
// the router, the adapters, and the HTTP layer.
package ai

import "time"

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Valid roles for Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one of the three recognized roles.
func ValidRole(role string) bool {
	return role == RoleSystem || role == RoleUser || role == RoleAssistant
}

// Request is the canonical chat completion input handed to every adapter.
// Adapters translate it into their provider's native call shape.
type Request struct {
	// Model overrides the adapter default when non-empty.
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Result is an adapter's raw successful reply, before normalization.
type Result struct {
	Text             string // Primary completion text. Empty text is a normalization failure.
	Model            string // Model that actually answered (may differ from the requested one).
	PromptTokens     int
	CompletionTokens int
}

// Usage is the token accounting attached to a normalized response.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Envelope is the only shape callers ever see on success.
// Provider records which upstream actually answered so logs and the
// client can attribute the reply.
type Envelope struct {
	Text      string    `json:"response"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model,omitempty"`
	Usage     *Usage    `json:"usage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
