// Task 3.8: Lorem provider — offline development fallback.
// Generates placeholder text without any network call or API key. Registered
// last in the chain, and only when ZEEKY_DEV_PROVIDER is set, so local
// development always gets an answer even with no upstream configured.
package ai

import (
	"context"
	"strings"

	lorem "github.com/bozaro/golorem"
)

// LoremProvider implements Provider with locally generated lorem ipsum.
type LoremProvider struct {
	gen *lorem.Lorem
}

// NewLoremProvider creates a LoremProvider.
func NewLoremProvider() *LoremProvider {
	return &LoremProvider{gen: lorem.New()}
}

// Name implements Provider.
func (p *LoremProvider) Name() string { return "lorem" }

// Complete generates a short paragraph sized roughly to MaxTokens.
func (p *LoremProvider) Complete(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, Upstream(p.Name(), true, err)
	}

	sentences := req.MaxTokens / 40
	if sentences < 1 {
		sentences = 1
	}
	if sentences > 8 {
		sentences = 8
	}

	var b strings.Builder
	for i := 0; i < sentences; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.gen.Sentence(5, 12))
	}
	text := b.String()

	return &Result{
		Text:             text,
		Model:            "lorem-dev",
		PromptTokens:     estimateTokens(req.Messages),
		CompletionTokens: len(strings.Fields(text)),
	}, nil
}

// HealthCheck always succeeds — there is nothing to reach.
func (p *LoremProvider) HealthCheck(_ context.Context) error { return nil }

// estimateTokens approximates prompt tokens as word count.
func estimateTokens(messages []Message) int {
	n := 0
	for _, m := range messages {
		n += len(strings.Fields(m.Content))
	}
	return n
}
