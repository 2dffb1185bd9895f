// Task 3.7: Ollama HTTP adapter — local fallback.
// Calls the local Ollama REST API using stdlib net/http.
// Endpoints used:
//   - POST /api/chat  — non-streaming chat completion
//   - GET  /api/tags  — health check (lists available models)
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OllamaProvider implements Provider against a running Ollama instance.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaProvider creates an OllamaProvider with a 30s default timeout.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements Provider.
func (p *OllamaProvider) Name() string { return "ollama" }

// ─── internal Ollama JSON types ──────────────────────────────────────────────

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message         ollamaChatMessage `json:"message"`
	Model           string            `json:"model"`
	PromptEvalCount int               `json:"prompt_eval_count"`
	EvalCount       int               `json:"eval_count"`
	Done            bool              `json:"done"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// Complete performs a non-streaming chat via POST /api/chat.
func (p *OllamaProvider) Complete(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]ollamaChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = ollamaChatMessage(m)
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   false,
		Options:  buildOllamaOptions(req),
	})
	if err != nil {
		return nil, Upstream(p.Name(), false, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, Upstream(p.Name(), false, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set(headerContentType, mimeJSON)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, Upstream(p.Name(), true, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode >= 500
		return nil, Upstream(p.Name(), transient, fmt.Errorf("status %d", resp.StatusCode))
	}

	var ollamaResp ollamaChatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&ollamaResp); decodeErr != nil {
		return nil, Upstream(p.Name(), false, fmt.Errorf("decode chat response: %w", decodeErr))
	}

	return &Result{
		Text:             ollamaResp.Message.Content,
		Model:            ollamaResp.Model,
		PromptTokens:     ollamaResp.PromptEvalCount,
		CompletionTokens: ollamaResp.EvalCount,
	}, nil
}

// buildOllamaOptions converts Request fields into the Ollama options map.
func buildOllamaOptions(req Request) map[string]any {
	opts := map[string]any{}
	if req.Temperature != 0 {
		opts["temperature"] = req.Temperature
	}
	if req.MaxTokens != 0 {
		opts["num_predict"] = req.MaxTokens
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// HealthCheck calls GET /api/tags — returns nil if Ollama is reachable.
func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama healthcheck: build request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama healthcheck: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama healthcheck: status %d", resp.StatusCode)
	}
	return nil
}
