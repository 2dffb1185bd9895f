// Task 4.4: Chat and generation orchestration.
// Request lifecycle: validate → admit → route. State lives only in the
// rate limiter's buckets; the service itself is stateless per request.
package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/zeekylabs/zeeky/internal/domain/usage"
	"github.com/zeekylabs/zeeky/internal/infra/ai"
	"github.com/zeekylabs/zeeky/internal/infra/eventbus"
	"github.com/zeekylabs/zeeky/internal/infra/ratelimit"
)

// Completion defaults applied when the caller omits options.
const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// Router is the fallback chain contract the service depends on.
// Satisfied by *ai.Router; stubbed in tests.
type Router interface {
	Route(ctx context.Context, req ai.Request) (*ai.Envelope, error)
}

// Service wires validation, admission control, and routing for the AI
// endpoints.
type Service struct {
	router   Router
	limiter  *ratelimit.Limiter
	bus      eventbus.EventBus
	personas map[string]string
	denylist []string
	logger   *slog.Logger
}

// NewService creates a Service. personas must contain DefaultPersona;
// denylist entries are matched case-insensitively against generation
// prompts before admission.
func NewService(router Router, limiter *ratelimit.Limiter, bus eventbus.EventBus, personas map[string]string, denylist []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		router:   router,
		limiter:  limiter,
		bus:      bus,
		personas: personas,
		denylist: denylist,
		logger:   logger,
	}
}

// Personas returns the recognized persona set.
func (s *Service) Personas() map[string]string { return s.personas }

// Chat runs the full request lifecycle for one chat envelope.
func (s *Service) Chat(ctx context.Context, caller Caller, req ChatRequest) (*ai.Envelope, error) {
	if err := ValidateChat(req, s.personas); err != nil {
		s.logger.Info("chat rejected by validator",
			slog.String("caller_id", caller.ID),
			slog.String("kind", string(ai.KindOf(err))),
		)
		return nil, err
	}

	if d := s.limiter.Admit(ratelimit.ClassAI, caller.ID); !d.Allowed {
		s.logger.Info("chat rate limited",
			slog.String("caller_id", caller.ID),
			slog.Duration("retry_after", d.RetryAfter),
		)
		return nil, ai.RateLimited(d.RetryAfter)
	}

	persona := req.Persona
	if persona == "" {
		persona = DefaultPersona
	}

	env, err := s.router.Route(ctx, ai.Request{
		Model:       req.Options.Model,
		Messages:    withSystemPrompt(req.Messages, s.personas[persona]),
		Temperature: temperatureOr(req.Options.Temperature, defaultTemperature),
		MaxTokens:   maxTokensOr(req.Options.MaxTokens, defaultMaxTokens),
	})
	s.publishUsage(caller, env, err)
	return env, err
}

// Generate runs the lifecycle for one generation envelope. The content
// policy pre-check runs before admission so denied prompts never cost
// generation quota.
func (s *Service) Generate(ctx context.Context, caller Caller, req GenerateRequest) (*ai.Envelope, error) {
	if err := ValidateGenerate(req, s.personas); err != nil {
		return nil, err
	}
	if term := s.deniedTerm(req.Prompt); term != "" {
		s.logger.Info("generation rejected by content policy",
			slog.String("caller_id", caller.ID),
		)
		return nil, ai.Validation("prompt contains disallowed content")
	}

	// Generation is keyed by caller id only, never IP (policy config).
	if d := s.limiter.Admit(ratelimit.ClassGeneration, caller.ID); !d.Allowed {
		return nil, ai.RateLimited(d.RetryAfter)
	}

	env, err := s.router.Route(ctx, ai.Request{
		Model: req.Options.Model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: generationPersona},
			{Role: ai.RoleUser, Content: req.Prompt},
		},
		Temperature: temperatureOr(req.Options.Temperature, defaultTemperature),
		MaxTokens:   maxTokensOr(req.Options.MaxTokens, defaultMaxTokens),
	})
	s.publishUsage(caller, env, err)
	return env, err
}

// publishUsage emits one usage record per routed request, success or not.
// Fire-and-forget: accounting must never block or fail the request path.
func (s *Service) publishUsage(caller Caller, env *ai.Envelope, err error) {
	if s.bus == nil {
		return
	}
	rec := usage.Record{
		CallerID: caller.ID,
		At:       time.Now().UTC(),
	}
	if env != nil {
		rec.Provider = env.Provider
		rec.Model = env.Model
		if env.Usage != nil {
			rec.PromptTokens = env.Usage.PromptTokens
			rec.CompletionTokens = env.Usage.CompletionTokens
		}
	}
	if err != nil {
		rec.ErrorKind = string(ai.KindOf(err))
	}
	s.bus.Publish(usage.TopicRequestCompleted, rec)
}

// deniedTerm returns the first denylist term found in prompt, or "".
func (s *Service) deniedTerm(prompt string) string {
	lowered := strings.ToLower(prompt)
	for _, term := range s.denylist {
		if term != "" && strings.Contains(lowered, strings.ToLower(term)) {
			return term
		}
	}
	return ""
}

// withSystemPrompt prepends the persona prompt unless the conversation
// already carries a system turn.
func withSystemPrompt(messages []ai.Message, prompt string) []ai.Message {
	if prompt == "" {
		return messages
	}
	for _, m := range messages {
		if m.Role == ai.RoleSystem {
			return messages
		}
	}
	out := make([]ai.Message, 0, len(messages)+1)
	out = append(out, ai.Message{Role: ai.RoleSystem, Content: prompt})
	return append(out, messages...)
}

func maxTokensOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func temperatureOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
