// Task 6.6: Provider status endpoint.
package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeekylabs/zeeky/internal/infra/ai"
)

// probeTimeout bounds each provider health check so one stuck upstream
// cannot hold the status response open.
const probeTimeout = 5 * time.Second

// Prober is one health-checkable provider. Satisfied by ai.Provider.
type Prober interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

type StatusHandler struct {
	probers []Prober
}

func NewStatusHandler(probers []Prober) *StatusHandler {
	return &StatusHandler{probers: probers}
}

// NewStatusHandlerFromProviders adapts a provider chain into a StatusHandler.
func NewStatusHandlerFromProviders(providers []ai.Provider) *StatusHandler {
	probers := make([]Prober, len(providers))
	for i, p := range providers {
		probers[i] = p
	}
	return NewStatusHandler(probers)
}

type serviceStatus struct {
	Available bool `json:"available"`
	Healthy   bool `json:"healthy"`
}

type statusResponse struct {
	Services map[string]serviceStatus `json:"services"`
	Overall  string                   `json:"overall"`
}

// Status handles GET /ai/status. All providers are probed in parallel; the
// response waits for the slowest probe, bounded by probeTimeout.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	results := make([]bool, len(h.probers))

	g, ctx := errgroup.WithContext(r.Context())
	for i, p := range h.probers {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			results[i] = p.HealthCheck(probeCtx) == nil
			return nil // a failed probe is a result, not an error
		})
	}
	_ = g.Wait() // probes never return errors

	services := make(map[string]serviceStatus, len(h.probers))
	healthy := 0
	for i, p := range h.probers {
		services[p.Name()] = serviceStatus{Available: true, Healthy: results[i]}
		if results[i] {
			healthy++
		}
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Services: services,
		Overall:  overall(healthy, len(h.probers)),
	})
}

// overall summarizes the probe results: every provider healthy is "ok", any
// healthy provider keeps the router serving ("degraded"), none is "down".
func overall(healthy, total int) string {
	switch {
	case total > 0 && healthy == total:
		return "ok"
	case healthy > 0:
		return "degraded"
	default:
		return "down"
	}
}
