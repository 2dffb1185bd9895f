// Task 3.7: Unit tests for OllamaProvider.
// Uses httptest.NewServer to mock the Ollama HTTP API — no real Ollama needed.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if req.Stream {
			http.Error(w, "streaming not expected", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaChatResponse{ //nolint:errcheck
			Message:         ollamaChatMessage{Role: "assistant", Content: "local reply"},
			Model:           req.Model,
			PromptEvalCount: 9,
			EvalCount:       4,
			Done:            true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	res, err := p.Complete(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Text != "local reply" {
		t.Errorf("Text = %q; want %q", res.Text, "local reply")
	}
	if res.Model != "llama3.2:3b" {
		t.Errorf("Model = %q; want default model", res.Model)
	}
}

func TestOllamaProvider_Complete_Options(t *testing.T) {
	t.Parallel()

	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaChatMessage{Content: "ok"}}) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	req := chatRequest()
	req.Temperature = 0.7
	req.MaxTokens = 256
	if _, err := p.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Options["temperature"] != 0.7 {
		t.Errorf("temperature option = %v; want 0.7", got.Options["temperature"])
	}
	if got.Options["num_predict"] != float64(256) {
		t.Errorf("num_predict option = %v; want 256", got.Options["num_predict"])
	}
}

func TestOllamaProvider_Complete_ServerError_Transient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	_, err := p.Complete(context.Background(), chatRequest())

	var aiErr *Error
	if !errors.As(err, &aiErr) || !aiErr.Transient {
		t.Errorf("5xx must classify as transient, got %v", err)
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b")
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestLoremProvider_Complete_AlwaysAnswers(t *testing.T) {
	t.Parallel()

	p := NewLoremProvider()
	res, err := p.Complete(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Text == "" {
		t.Error("lorem provider returned empty text")
	}
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
