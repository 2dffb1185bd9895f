// Task 6.5 tests: chat and generation endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zeekylabs/zeeky/internal/api/ctxkeys"
	"github.com/zeekylabs/zeeky/internal/domain/assistant"
	"github.com/zeekylabs/zeeky/internal/infra/ai"
)

// stubAssistant returns canned envelopes or errors.
type stubAssistant struct {
	env *ai.Envelope
	err error

	gotChat     *assistant.ChatRequest
	gotGenerate *assistant.GenerateRequest
}

func (s *stubAssistant) Chat(_ context.Context, _ assistant.Caller, req assistant.ChatRequest) (*ai.Envelope, error) {
	s.gotChat = &req
	return s.env, s.err
}

func (s *stubAssistant) Generate(_ context.Context, _ assistant.Caller, req assistant.GenerateRequest) (*ai.Envelope, error) {
	s.gotGenerate = &req
	return s.env, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := ctxkeys.WithValue(req.Context(), ctxkeys.CallerID, "caller-1")
	ctx = ctxkeys.WithValue(ctx, ctxkeys.TrustLevel, assistant.TrustUser)
	return req.WithContext(ctx)
}

func TestChat_Success(t *testing.T) {
	t.Parallel()

	svc := &stubAssistant{env: &ai.Envelope{
		Text:      "hello there",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Usage:     &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		Timestamp: time.Now().UTC(),
	}}
	handler := NewAssistantHandler(svc)

	body := `{"messages":[{"role":"user","content":"hi"}],"personality":"dj"}`
	rec := httptest.NewRecorder()
	handler.Chat(rec, authedRequest(http.MethodPost, "/ai/chat", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var got chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Response != "hello there" {
		t.Errorf("response = %q, want %q", got.Response, "hello there")
	}
	if got.Provider != "openai" {
		t.Errorf("provider = %q, want openai", got.Provider)
	}
	if got.Personality != "dj" {
		t.Errorf("personality = %q, want dj", got.Personality)
	}
	if got.Usage == nil || got.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v, want totalTokens 15", got.Usage)
	}
	if svc.gotChat == nil || svc.gotChat.Persona != "dj" {
		t.Errorf("service saw request %+v, want persona dj", svc.gotChat)
	}
}

func TestChat_DefaultPersonaEchoed(t *testing.T) {
	t.Parallel()

	svc := &stubAssistant{env: &ai.Envelope{Text: "ok", Provider: "lorem", Timestamp: time.Now().UTC()}}
	handler := NewAssistantHandler(svc)

	rec := httptest.NewRecorder()
	handler.Chat(rec, authedRequest(http.MethodPost, "/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

	var got chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Personality != assistant.DefaultPersona {
		t.Errorf("personality = %q, want %q", got.Personality, assistant.DefaultPersona)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", ai.Validation("messages are required"), http.StatusBadRequest, "validation_error"},
		{"rate limited", ai.RateLimited(30 * time.Second), http.StatusTooManyRequests, "rate_limited"},
		{"unavailable", ai.Unavailable(nil), http.StatusServiceUnavailable, "all_providers_unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewAssistantHandler(&stubAssistant{err: tc.err})
			rec := httptest.NewRecorder()
			handler.Chat(rec, authedRequest(http.MethodPost, "/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal error body: %v", err)
			}
			if body.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tc.wantCode)
			}
		})
	}
}

func TestChat_RateLimitedCarriesRetryAfter(t *testing.T) {
	t.Parallel()

	handler := NewAssistantHandler(&stubAssistant{err: ai.RateLimited(45 * time.Second)})
	rec := httptest.NewRecorder()
	handler.Chat(rec, authedRequest(http.MethodPost, "/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body.RetryAfter != 45 {
		t.Errorf("retryAfter = %d, want 45", body.RetryAfter)
	}
	if got := rec.Header().Get("Retry-After"); got != "45" {
		t.Errorf("Retry-After header = %q, want 45", got)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	t.Parallel()

	handler := NewAssistantHandler(&stubAssistant{})
	rec := httptest.NewRecorder()
	handler.Chat(rec, authedRequest(http.MethodPost, "/ai/chat", `{not json`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChat_MissingCallerContext(t *testing.T) {
	t.Parallel()

	handler := NewAssistantHandler(&stubAssistant{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ai/chat", strings.NewReader(`{}`))
	handler.Chat(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	svc := &stubAssistant{env: &ai.Envelope{Text: "a song", Provider: "anthropic", Timestamp: time.Now().UTC()}}
	handler := NewAssistantHandler(svc)

	rec := httptest.NewRecorder()
	handler.Generate(rec, authedRequest(http.MethodPost, "/ai/generate", `{"prompt":"upbeat synthwave"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var got generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Response != "a song" || got.Provider != "anthropic" {
		t.Errorf("got %+v, want response %q from anthropic", got, "a song")
	}
	if svc.gotGenerate == nil || svc.gotGenerate.Prompt != "upbeat synthwave" {
		t.Errorf("service saw request %+v", svc.gotGenerate)
	}
}

func TestGenerate_ValidationRejected(t *testing.T) {
	t.Parallel()

	handler := NewAssistantHandler(&stubAssistant{err: ai.Validation("prompt contains disallowed content")})
	rec := httptest.NewRecorder()
	handler.Generate(rec, authedRequest(http.MethodPost, "/ai/generate", `{"prompt":"bad"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
