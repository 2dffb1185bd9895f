// Task 6.8: Route registration and go-chi router setup.
// Public routes (/health) vs token-protected routes (/ai/*, /admin/*).
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zeekylabs/zeeky/internal/api/handlers"
	apmiddleware "github.com/zeekylabs/zeeky/internal/api/middleware"
	"github.com/zeekylabs/zeeky/internal/infra/ai"
	"github.com/zeekylabs/zeeky/internal/infra/ratelimit"
)

// Deps carries the wired services the router exposes over HTTP.
type Deps struct {
	Assistant handlers.AssistantService
	Providers []ai.Provider
	Usage     handlers.UsageStore
	Limiter   *ratelimit.Limiter
}

// NewRouter creates and configures a chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apmiddleware.RateLimit(deps.Limiter, ratelimit.ClassGeneral))

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// ===== PROTECTED ROUTES (Bearer token required via AuthMiddleware) =====

	assistantHandler := handlers.NewAssistantHandler(deps.Assistant)
	statusHandler := handlers.NewStatusHandlerFromProviders(deps.Providers)
	usageHandler := handlers.NewUsageHandler(deps.Usage)

	r.Group(func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware(deps.Limiter))

		// AI and generation quotas are enforced inside the assistant
		// service, after validation, so malformed requests never burn them.
		r.Route("/ai", func(r chi.Router) {
			r.Post("/chat", assistantHandler.Chat)         // POST /ai/chat
			r.Post("/generate", assistantHandler.Generate) // POST /ai/generate
			r.Get("/status", statusHandler.Status)         // GET /ai/status
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(apmiddleware.RateLimit(deps.Limiter, ratelimit.ClassAdmin))
			r.Get("/usage", usageHandler.Usage) // GET /admin/usage
		})
	})

	return r
}
