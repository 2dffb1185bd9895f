// Package aiclient is the resilient chat client for the Zeeky API.
// Task 8.1: it wraps POST /ai/chat with bounded retries, server-directed
// backoff, and safe fallback replies, and keeps a rolling conversation
// window so each request carries recent context. Send never returns an
// error: the caller always gets something speakable.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Retry defaults, overridable via Config.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL of the Zeeky API, e.g. "http://localhost:8080".
	BaseURL string

	// Token is the bearer credential sent with every request.
	Token string

	// Persona selects the reply personality; empty means the server default.
	Persona string

	// Attempts is the per-send retry budget (DefaultAttempts if <= 0).
	Attempts int

	// BaseDelay seeds the exponential backoff (DefaultBaseDelay if <= 0).
	BaseDelay time.Duration

	// BufferSize caps the conversation window (DefaultBufferSize if <= 0).
	BufferSize int

	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
}

// Client is a stateful conversation handle. Safe only for sequential use;
// one Client corresponds to one conversation.
type Client struct {
	baseURL   string
	token     string
	persona   string
	attempts  int
	baseDelay time.Duration
	http      *http.Client
	buffer    *Buffer

	// sleep is injectable so retry pacing is testable without real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client for one conversation.
func New(cfg Config) *Client {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		persona:   cfg.Persona,
		attempts:  attempts,
		baseDelay: baseDelay,
		http:      httpClient,
		buffer:    NewBuffer(cfg.BufferSize),
		sleep:     sleepCtx,
	}
}

// Buffer exposes the conversation window, mainly for persistence and tests.
func (c *Client) Buffer() *Buffer { return c.buffer }

// chatPayload is the POST /ai/chat request body.
type chatPayload struct {
	Messages    []Message `json:"messages"`
	Personality string    `json:"personality,omitempty"`
}

type apiError struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter"`
}

// Send submits one user turn and returns the assistant's reply.
// Retry policy per failure code:
//   - rate_limited: wait the server's retryAfter (base delay when absent)
//   - all_providers_unavailable, upstream, network: exponential backoff,
//     baseDelay × 2^(attempt-1)
//   - validation, unauthorized: never retried
//
// When the budget is exhausted (or ctx is canceled) the reply is a
// code-matched fallback with Provider "fallback". The exchange is buffered
// only on a real success, exactly once regardless of retry count.
func (c *Client) Send(ctx context.Context, text string) Envelope {
	messages := append(c.buffer.Messages(), Message{Role: RoleUser, Content: text})

	lastCode := codeUnavailable
	for attempt := 1; attempt <= c.attempts; attempt++ {
		env, code, retryAfter, err := c.post(ctx, messages)
		if err == nil {
			c.buffer.AppendExchange(text, env.Text)
			return env
		}
		lastCode = code

		if code == codeValidation || code == codeUnauthorized {
			break
		}
		if attempt == c.attempts {
			break
		}

		delay := c.baseDelay << (attempt - 1)
		if code == codeRateLimited && retryAfter > 0 {
			delay = retryAfter
		}
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			break // canceled mid-wait; stop retrying this send
		}
	}

	return fallbackEnvelope(lastCode)
}

// post performs one attempt. On failure it returns the classified code and,
// for rate limiting, how long the server asked us to wait.
func (c *Client) post(ctx context.Context, messages []Message) (Envelope, string, time.Duration, error) {
	body, err := json.Marshal(chatPayload{Messages: messages, Personality: c.persona})
	if err != nil {
		return Envelope{}, codeValidation, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai/chat", bytes.NewReader(body))
	if err != nil {
		return Envelope{}, codeValidation, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failure: systemic, retried like an unavailable backend.
		return Envelope{}, codeUnavailable, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusOK {
		var env Envelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
			return Envelope{}, codeUpstream, 0, fmt.Errorf("decode reply: %w", decodeErr)
		}
		return env, "", 0, nil
	}

	var apiErr apiError
	_ = json.NewDecoder(resp.Body).Decode(&apiErr) // best effort; code falls back to status

	code := codeFromResponse(resp.StatusCode, apiErr.Code)
	return Envelope{}, code, time.Duration(apiErr.RetryAfter) * time.Second,
		fmt.Errorf("api error: status %d, code %q", resp.StatusCode, apiErr.Code)
}

// codeFromResponse prefers the serialized code and falls back to the HTTP
// status for responses that did not carry the error envelope.
func codeFromResponse(status int, code string) string {
	switch code {
	case codeValidation, codeUnauthorized, codeRateLimited, codeUpstream, codeUnavailable:
		return code
	}
	switch status {
	case http.StatusBadRequest:
		return codeValidation
	case http.StatusUnauthorized:
		return codeUnauthorized
	case http.StatusTooManyRequests:
		return codeRateLimited
	case http.StatusBadGateway:
		return codeUpstream
	default:
		return codeUnavailable
	}
}

// sleepCtx waits for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
