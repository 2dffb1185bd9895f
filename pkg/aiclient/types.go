// Task 8.1: Wire types for the chat API.
// Declared here rather than borrowed from the server so the package stays
// importable by external programs.
package aiclient

import "time"

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Recognized roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage is the token accounting attached to a reply.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Envelope is what Send always returns. Provider is the upstream that
// answered, or "fallback" for locally synthesized replies.
type Envelope struct {
	Text      string    `json:"response"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model,omitempty"`
	Usage     *Usage    `json:"usage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Failure codes serialized by the API's error envelope.
const (
	codeValidation   = "validation_error"
	codeUnauthorized = "unauthorized"
	codeRateLimited  = "rate_limited"
	codeUpstream     = "upstream_error"
	codeUnavailable  = "all_providers_unavailable"
)
