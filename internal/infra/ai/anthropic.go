// Task 3.6: Anthropic adapter.
// Uses the official anthropic-sdk-go client. System messages are lifted out
// of the conversation into the Messages API system field.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider for Claude models.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates an AnthropicProvider with the given API key.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(providerTimeout),
	)
	return &AnthropicProvider{client: &client, model: model}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete performs a non-streaming chat via the Messages API.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  convertMessages(req.Messages),
	}
	if system := collectSystem(req.Messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(p.Name(), err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Result{
		Text:             text.String(),
		Model:            string(msg.Model),
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}, nil
}

// HealthCheck issues a minimal single-token completion.
// The Messages API has no dedicated health endpoint.
func (p *AnthropicProvider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock("ping"))},
	})
	if err != nil {
		return fmt.Errorf("anthropic healthcheck: %w", err)
	}
	return nil
}

// convertMessages maps user/assistant turns to SDK params.
// System messages are handled separately by collectSystem.
func convertMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}

// collectSystem joins all system turns into one system prompt string.
func collectSystem(messages []Message) string {
	var parts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// classifyAnthropicError maps SDK failures onto the upstream taxonomy.
// 429 (quota) and 5xx (overload) are transient; other API statuses —
// including our own credentials being rejected — are permanent. Transport
// errors without a status are transient.
func classifyAnthropicError(provider string, err error) *Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		transient := apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
		return Upstream(provider, transient, err)
	}
	return Upstream(provider, true, err)
}
