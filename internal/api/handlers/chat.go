// Task 6.5: Chat and generation endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zeekylabs/zeeky/internal/domain/assistant"
	"github.com/zeekylabs/zeeky/internal/infra/ai"
)

// AssistantService is the contract the handlers depend on.
// Satisfied by *assistant.Service; stubbed in tests.
type AssistantService interface {
	Chat(ctx context.Context, caller assistant.Caller, req assistant.ChatRequest) (*ai.Envelope, error)
	Generate(ctx context.Context, caller assistant.Caller, req assistant.GenerateRequest) (*ai.Envelope, error)
}

type AssistantHandler struct {
	service AssistantService
}

func NewAssistantHandler(service AssistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// chatResponse is the success envelope for POST /ai/chat. Personality echoes
// back which persona shaped the reply so clients can label it.
type chatResponse struct {
	Response    string    `json:"response"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model,omitempty"`
	Usage       *ai.Usage `json:"usage,omitempty"`
	Personality string    `json:"personality"`
	Timestamp   time.Time `json:"timestamp"`
}

// Chat handles POST /ai/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing caller context")
		return
	}

	var req assistant.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAIError(w, ai.Validation("invalid request body"))
		return
	}

	env, err := h.service.Chat(r.Context(), caller, req)
	if err != nil {
		writeAIError(w, err)
		return
	}

	persona := req.Persona
	if persona == "" {
		persona = assistant.DefaultPersona
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Response:    env.Text,
		Provider:    env.Provider,
		Model:       env.Model,
		Usage:       env.Usage,
		Personality: persona,
		Timestamp:   env.Timestamp,
	})
}

// generateResponse is the success envelope for POST /ai/generate.
type generateResponse struct {
	Response  string    `json:"response"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model,omitempty"`
	Usage     *ai.Usage `json:"usage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Generate handles POST /ai/generate.
func (h *AssistantHandler) Generate(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing caller context")
		return
	}

	var req assistant.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAIError(w, ai.Validation("invalid request body"))
		return
	}

	env, err := h.service.Generate(r.Context(), caller, req)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Response:  env.Text,
		Provider:  env.Provider,
		Model:     env.Model,
		Usage:     env.Usage,
		Timestamp: env.Timestamp,
	})
}
