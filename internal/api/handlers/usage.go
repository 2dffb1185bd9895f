// Task 6.7: Admin usage reporting endpoint.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/zeekylabs/zeeky/internal/domain/assistant"
	"github.com/zeekylabs/zeeky/internal/domain/usage"
)

const (
	defaultUsageWindowHours = 24
	maxUsageWindowHours     = 24 * 30
)

// UsageStore is the reporting contract. Satisfied by *usage.Store.
type UsageStore interface {
	Summary(ctx context.Context, since time.Time) ([]usage.CallerSummary, error)
}

type UsageHandler struct {
	store UsageStore
}

func NewUsageHandler(store UsageStore) *UsageHandler {
	return &UsageHandler{store: store}
}

type usageResponse struct {
	Since   time.Time             `json:"since"`
	Callers []usage.CallerSummary `json:"callers"`
}

// Usage handles GET /admin/usage?hours=N. Admin trust only.
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing caller context")
		return
	}
	if caller.TrustLevel != assistant.TrustAdmin {
		writeError(w, http.StatusForbidden, "admin trust level required")
		return
	}

	since := time.Now().UTC().Add(-time.Duration(usageWindowHours(r)) * time.Hour)
	callers, err := h.store.Summary(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load usage summary")
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{Since: since, Callers: callers})
}

// usageWindowHours parses ?hours=N, clamped to [1, maxUsageWindowHours].
func usageWindowHours(r *http.Request) int {
	hours := defaultUsageWindowHours
	if h, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil && h > 0 {
		hours = h
		if hours > maxUsageWindowHours {
			hours = maxUsageWindowHours
		}
	}
	return hours
}
