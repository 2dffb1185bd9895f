// Task 3.3: Unit tests for the fallback Router.
// Uses stub Provider implementations — no HTTP needed.
package ai

import (
	"context"
	"errors"
	"testing"
)

// stubProvider is a minimal Provider stub for router testing.
type stubProvider struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Complete(_ context.Context, _ Request) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
func (s *stubProvider) HealthCheck(_ context.Context) error { return nil }

func chatRequest() Request {
	return Request{
		Messages:  []Message{{Role: RoleUser, Content: "hello"}},
		MaxTokens: 100,
	}
}

// ============================================================================
// Router tests
// ============================================================================

func TestRouter_Route_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "openai", result: &Result{Text: "hi from openai", Model: "gpt-4o-mini"}}
	second := &stubProvider{name: "anthropic", result: &Result{Text: "hi from anthropic"}}
	r := NewRouter([]Provider{first, second}, nil)

	env, err := r.Route(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if env.Provider != "openai" {
		t.Errorf("Provider = %q; want %q", env.Provider, "openai")
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times; want 0 (first success short-circuits)", second.calls)
	}
}

func TestRouter_Route_ThirdProviderSucceeds_Attributed(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "openai", err: Upstream("openai", true, errors.New("quota"))}
	second := &stubProvider{name: "anthropic", err: Upstream("anthropic", false, errors.New("bad creds"))}
	third := &stubProvider{name: "ollama", result: &Result{Text: "local answer", Model: "llama3.2:3b"}}
	r := NewRouter([]Provider{first, second, third}, nil)

	env, err := r.Route(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if env.Provider != "ollama" {
		t.Errorf("Provider = %q; want %q (third in chain)", env.Provider, "ollama")
	}
	// Permanent failures continue the scan too — another provider may answer.
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("call counts = %d/%d/%d; want 1/1/1", first.calls, second.calls, third.calls)
	}
}

func TestRouter_Route_AllFail_ReturnsUnavailableWithReasons(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "openai", err: Upstream("openai", true, errors.New("timeout"))}
	second := &stubProvider{name: "anthropic", err: Upstream("anthropic", true, errors.New("status 529"))}
	r := NewRouter([]Provider{first, second}, nil)

	_, err := r.Route(context.Background(), chatRequest())
	if err == nil {
		t.Fatal("expected error when all providers fail, got nil")
	}

	var aiErr *Error
	if !errors.As(err, &aiErr) {
		t.Fatalf("expected *ai.Error, got %T", err)
	}
	if aiErr.Kind != KindUnavailable {
		t.Errorf("Kind = %q; want %q", aiErr.Kind, KindUnavailable)
	}
	if len(aiErr.Failures) != 2 {
		t.Fatalf("Failures = %d; want 2", len(aiErr.Failures))
	}
	if aiErr.Failures[0].Provider != "openai" || aiErr.Failures[1].Provider != "anthropic" {
		t.Errorf("failure attribution wrong: %+v", aiErr.Failures)
	}
}

func TestRouter_Route_NoProviders_ReturnsUnavailable(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil, nil)
	_, err := r.Route(context.Background(), chatRequest())
	if KindOf(err) != KindUnavailable {
		t.Errorf("KindOf = %q; want %q", KindOf(err), KindUnavailable)
	}
}

func TestRouter_Route_EmptyCompletion_TreatedAsFailure(t *testing.T) {
	t.Parallel()

	// First provider "succeeds" with an empty string — must not win the chain.
	empty := &stubProvider{name: "openai", result: &Result{Text: ""}}
	good := &stubProvider{name: "anthropic", result: &Result{Text: "real answer"}}
	r := NewRouter([]Provider{empty, good}, nil)

	env, err := r.Route(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if env.Provider != "anthropic" {
		t.Errorf("Provider = %q; want %q (empty completion skipped)", env.Provider, "anthropic")
	}
}

// ============================================================================
// Normalize tests
// ============================================================================

func TestNormalize_PopulatesEnvelope(t *testing.T) {
	t.Parallel()

	env, err := Normalize("openai", &Result{Text: "hello", Model: "gpt-4o-mini", PromptTokens: 10, CompletionTokens: 5})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if env.Provider != "openai" || env.Model != "gpt-4o-mini" {
		t.Errorf("attribution wrong: provider=%q model=%q", env.Provider, env.Model)
	}
	if env.Usage == nil || env.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v; want total 15", env.Usage)
	}
	if env.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestNormalize_EmptyText_ReturnsUpstreamError(t *testing.T) {
	t.Parallel()

	for _, raw := range []*Result{nil, {Text: ""}} {
		_, err := Normalize("openai", raw)
		if KindOf(err) != KindUpstream {
			t.Errorf("KindOf(%v) = %q; want %q", raw, KindOf(err), KindUpstream)
		}
	}
}
