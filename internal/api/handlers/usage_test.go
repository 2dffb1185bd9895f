// Task 6.7 tests: admin usage endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zeekylabs/zeeky/internal/api/ctxkeys"
	"github.com/zeekylabs/zeeky/internal/domain/assistant"
	"github.com/zeekylabs/zeeky/internal/domain/usage"
)

type stubUsageStore struct {
	summaries []usage.CallerSummary
	gotSince  time.Time
}

func (s *stubUsageStore) Summary(_ context.Context, since time.Time) ([]usage.CallerSummary, error) {
	s.gotSince = since
	return s.summaries, nil
}

func adminRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := ctxkeys.WithValue(req.Context(), ctxkeys.CallerID, "admin-1")
	ctx = ctxkeys.WithValue(ctx, ctxkeys.TrustLevel, assistant.TrustAdmin)
	return req.WithContext(ctx)
}

func TestUsage_AdminOnly(t *testing.T) {
	t.Parallel()

	handler := NewUsageHandler(&stubUsageStore{})
	rec := httptest.NewRecorder()
	handler.Usage(rec, authedRequest(http.MethodGet, "/admin/usage", ""))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status for user trust = %d, want 403", rec.Code)
	}
}

func TestUsage_ReturnsSummaries(t *testing.T) {
	t.Parallel()

	store := &stubUsageStore{summaries: []usage.CallerSummary{
		{CallerID: "alice", Requests: 3, Failures: 1, PromptTokens: 120, CompletionTokens: 60},
	}}
	handler := NewUsageHandler(store)
	rec := httptest.NewRecorder()
	handler.Usage(rec, adminRequest("/admin/usage"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var got usageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got.Callers) != 1 || got.Callers[0].CallerID != "alice" {
		t.Errorf("callers = %+v, want one entry for alice", got.Callers)
	}

	// Default window is 24 hours.
	wantSince := time.Now().UTC().Add(-defaultUsageWindowHours * time.Hour)
	if diff := store.gotSince.Sub(wantSince); diff < -time.Minute || diff > time.Minute {
		t.Errorf("since = %v, want ~%v", store.gotSince, wantSince)
	}
}

func TestUsageWindowHours(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  int
	}{
		{"", defaultUsageWindowHours},
		{"?hours=6", 6},
		{"?hours=0", defaultUsageWindowHours},
		{"?hours=-3", defaultUsageWindowHours},
		{"?hours=banana", defaultUsageWindowHours},
		{"?hours=99999", maxUsageWindowHours},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin/usage"+tc.query, nil)
		if got := usageWindowHours(req); got != tc.want {
			t.Errorf("usageWindowHours(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}
