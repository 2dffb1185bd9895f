// Task 3.5: OpenAI HTTP adapter.
// Calls the chat completions REST API with stdlib net/http. Any
// OpenAI-compatible endpoint works via the base URL override.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	providerTimeout      = 30 * time.Second
)

// OpenAIProvider implements Provider against the OpenAI chat completions API.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider with a 30s call timeout.
// baseURL may be empty (defaults to api.openai.com).
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: providerTimeout,
		},
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// ─── internal OpenAI JSON types ──────────────────────────────────────────────

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// Complete performs a non-streaming chat via POST /chat/completions.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]openAIChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openAIChatMessage(m)
	}

	body, err := json.Marshal(openAIChatRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, Upstream(p.Name(), false, fmt.Errorf("marshal request: %w", err))
	}

	raw, callErr := p.doPost(ctx, "/chat/completions", body)
	if callErr != nil {
		return nil, callErr
	}

	var resp openAIChatResponse
	if decodeErr := json.Unmarshal(raw, &resp); decodeErr != nil {
		return nil, Upstream(p.Name(), false, fmt.Errorf("decode chat response: %w", decodeErr))
	}
	if len(resp.Choices) == 0 {
		return nil, Upstream(p.Name(), false, errors.New("response has no choices"))
	}

	return &Result{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck calls GET /models — returns nil if the API answers with 200.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("openai healthcheck: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai healthcheck: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai healthcheck: status %d", resp.StatusCode)
	}
	return nil
}

// doPost sends a POST and returns the body, classifying every failure.
func (p *OpenAIProvider) doPost(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, Upstream(p.Name(), false, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport errors may succeed on another provider.
		return nil, Upstream(p.Name(), true, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, Upstream(p.Name(), true, fmt.Errorf("read response: %w", readErr))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus(p.Name(), resp.StatusCode, raw)
	}
	return raw, nil
}

// classifyHTTPStatus maps an upstream HTTP status to a classified error.
// 429 and 5xx are transient (quota exhaustion, overload); other 4xx —
// including 401/403 against the provider's own credentials — are permanent.
func classifyHTTPStatus(provider string, status int, body []byte) *Error {
	transient := status == http.StatusTooManyRequests || status >= 500
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return Upstream(provider, transient, fmt.Errorf("status %d: %s", status, snippet))
}
