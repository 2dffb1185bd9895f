// Task 6.4: Handler helper functions and context access.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zeekylabs/zeeky/internal/api/ctxkeys"
	"github.com/zeekylabs/zeeky/internal/domain/assistant"
	"github.com/zeekylabs/zeeky/internal/infra/ai"
)

const headerContentType = "Content-Type"
const mimeJSON = "application/json"

// getCaller retrieves the authenticated caller from context.
// Uses ctxkeys — same type+value as AuthMiddleware injection, so a silent
// type mismatch between packages cannot blank the identity.
func getCaller(ctx context.Context) (assistant.Caller, error) {
	id := ctxkeys.Value(ctx, ctxkeys.CallerID)
	if id == "" {
		return assistant.Caller{}, fmt.Errorf("caller_id not found in context")
	}
	trust := ctxkeys.Value(ctx, ctxkeys.TrustLevel)
	if trust == "" {
		trust = assistant.TrustUser
	}
	return assistant.Caller{ID: id, TrustLevel: trust}, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes a plain JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// errorBody is the uniform error envelope for the AI endpoints.
// RetryAfter is whole seconds, present only for rate-limited rejections.
type errorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// writeAIError maps a classified error onto its status code and envelope.
// Unclassified errors surface as 503 so a raw error can never select a
// misleading 4xx status; the wrapped cause is never serialized to clients.
func writeAIError(w http.ResponseWriter, err error) {
	kind := ai.KindOf(err)

	body := errorBody{Code: string(kind)}
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		body.Error = aiErr.Message
		if aiErr.Kind == ai.KindRateLimited {
			retryAfter := int(aiErr.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			body.RetryAfter = retryAfter
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		}
	} else {
		body.Error = "all AI providers are currently unavailable"
	}

	writeJSON(w, ai.HTTPStatus(kind), body)
}
