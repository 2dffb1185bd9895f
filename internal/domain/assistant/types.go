// Package assistant — Task 4.1: chat domain service.
// Validates request envelopes, applies admission control, and hands the
// request to the AI fallback router.
package assistant

import "github.com/zeekylabs/zeeky/internal/infra/ai"

// Options are the caller-tunable completion parameters.
type Options struct {
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// ChatRequest is the inbound chat envelope.
type ChatRequest struct {
	Messages []ai.Message `json:"messages"`
	Persona  string       `json:"personality"`
	Options  Options      `json:"options"`
}

// GenerateRequest is the inbound generation envelope (music-style prompts).
// Prompts are short by contract — the cap is 500 characters.
type GenerateRequest struct {
	Prompt  string  `json:"prompt"`
	Persona string  `json:"personality"`
	Options Options `json:"options"`
}

// Caller is the identity resolved once per request from the bearer
// credential. Immutable for the request's lifetime; its ID is the
// rate-limit key for caller-keyed classes.
type Caller struct {
	ID         string
	TrustLevel string
}

// Trust levels issued by the identity collaborator.
const (
	TrustUser  = "user"
	TrustAdmin = "admin"
)
