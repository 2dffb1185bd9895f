// Task 3.4: Response normalization.
package ai

import (
	"errors"
	"time"
)

var errEmptyCompletion = errors.New("provider returned an empty completion")

// Normalize maps an adapter's raw result into the canonical Envelope.
// Pure mapping — the only failure mode is a missing primary text field,
// which is an upstream error, not an empty success. An empty reply from a
// provider must not short-circuit the fallback chain.
func Normalize(provider string, raw *Result) (*Envelope, error) {
	if raw == nil || raw.Text == "" {
		return nil, Upstream(provider, false, errEmptyCompletion)
	}

	env := &Envelope{
		Text:      raw.Text,
		Provider:  provider,
		Model:     raw.Model,
		Timestamp: time.Now().UTC(),
	}
	if raw.PromptTokens > 0 || raw.CompletionTokens > 0 {
		env.Usage = &Usage{
			PromptTokens:     raw.PromptTokens,
			CompletionTokens: raw.CompletionTokens,
			TotalTokens:      raw.PromptTokens + raw.CompletionTokens,
		}
	}
	return env, nil
}
