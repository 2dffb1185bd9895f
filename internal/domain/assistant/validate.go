// Task 4.2: Request envelope validation.
// Pure checks with no side effects, run before any rate-limit consumption
// so an invalid request never costs quota.
package assistant

import "github.com/zeekylabs/zeeky/internal/infra/ai"

const (
	maxChatContentLen = 8000
	maxGenPromptLen   = 500

	minMaxTokens = 1
	maxMaxTokens = 4000
	minTemp      = 0.0
	maxTemp      = 2.0
)

// ValidateChat checks the chat envelope shape. personas is the recognized
// persona set (any map with persona names as keys).
func ValidateChat(req ChatRequest, personas map[string]string) error {
	if len(req.Messages) == 0 {
		return ai.Validation("messages must be a non-empty array")
	}
	for i, m := range req.Messages {
		if !ai.ValidRole(m.Role) {
			return ai.Validation("messages[%d]: invalid role %q", i, m.Role)
		}
		if len(m.Content) > maxChatContentLen {
			return ai.Validation("messages[%d]: content exceeds %d characters", i, maxChatContentLen)
		}
	}
	if err := validatePersona(req.Persona, personas); err != nil {
		return err
	}
	return validateOptions(req.Options)
}

// ValidateGenerate checks the generation envelope shape.
func ValidateGenerate(req GenerateRequest, personas map[string]string) error {
	if req.Prompt == "" {
		return ai.Validation("prompt is required")
	}
	if len(req.Prompt) > maxGenPromptLen {
		return ai.Validation("prompt exceeds %d characters", maxGenPromptLen)
	}
	if err := validatePersona(req.Persona, personas); err != nil {
		return err
	}
	return validateOptions(req.Options)
}

func validatePersona(persona string, personas map[string]string) error {
	if persona == "" {
		return nil // service applies the default persona
	}
	if _, ok := personas[persona]; !ok {
		return ai.Validation("unknown personality %q", persona)
	}
	return nil
}

func validateOptions(opts Options) error {
	if opts.MaxTokens != 0 && (opts.MaxTokens < minMaxTokens || opts.MaxTokens > maxMaxTokens) {
		return ai.Validation("options.maxTokens must be between %d and %d", minMaxTokens, maxMaxTokens)
	}
	if opts.Temperature < minTemp || opts.Temperature > maxTemp {
		return ai.Validation("options.temperature must be between %g and %g", minTemp, maxTemp)
	}
	return nil
}
